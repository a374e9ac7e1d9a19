package algo

import (
	"sort"
	"windfarm-planner/model"
)

// Position 示意图画布上的坐标
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LayoutKind 使用的布局方式
type LayoutKind string

const (
	LayoutWindFarm LayoutKind = "wind_farm"
	LayoutGrid     LayoutKind = "grid"
)

// 画布布局参数
const (
	layoutOriginX     = 40.0
	layoutOriginY     = 40.0
	turbineColSpacing = 120.0 // 同一串内风机的列间距
	turbineRowSpacing = 100.0 // 相邻风机串的行间距
	substationGap     = 200.0 // 最宽风机串与升压站列之间的距离
	otherNodesGap     = 200.0 // 升压站列与其他节点列之间的距离
	gridColumns       = 6
	gridSpacingX      = 160.0
	gridSpacingY      = 120.0
)

// ComputeLayout 优先使用风电场布局, 不是风电场拓扑时退回网格布局
func ComputeLayout(nodes []model.MapNode, cables []model.CableRef) ([]Position, LayoutKind) {
	if positions := ComputeOffshoreWindFarmLayout(nodes, cables); positions != nil {
		return positions, LayoutWindFarm
	}
	return ComputeGridLayout(nodes), LayoutGrid
}

// ComputeOffshoreWindFarmLayout 风电场示意图布局
// 每个风机连通分量占一行, 串内风机从左到右排列; 升压站位于最宽风机串右侧并垂直居中,
// 其他类型的节点再往右排成一列。没有风机或没有升压站时返回 nil。
// 返回值与 nodes 一一对应。
func ComputeOffshoreWindFarmLayout(nodes []model.MapNode, cables []model.CableRef) []Position {
	var substations, others []int
	hasTurbine := false
	for i, n := range nodes {
		switch n.Type {
		case model.NodeWindTurbine:
			hasTurbine = true
		case model.NodeOffshoreSubstation:
			substations = append(substations, i)
		case model.NodeBus, model.NodeOnshoreSubstation, model.NodeExternalGrid,
			model.NodeGenerator, model.NodeLoad:
			others = append(others, i)
		default:
			others = append(others, i)
		}
	}
	if !hasTurbine || len(substations) == 0 {
		return nil
	}

	// 只保留风机之间的连接
	topo := NewTopology(nodes)
	isTurbine := func(n model.MapNode) bool { return n.Type.IsTurbine() }
	for _, c := range cables {
		from, to := topo.Nodes[c.From], topo.Nodes[c.To]
		if from != nil && to != nil && isTurbine(*from) && isTurbine(*to) {
			topo.AddLink("", c.From, c.To, 0)
		}
	}

	index := make(map[string]int, len(nodes))
	for i := len(nodes) - 1; i >= 0; i-- {
		index[nodes[i].ID] = i
	}

	positions := make([]Position, len(nodes))
	components := topo.Components(isTurbine)
	maxCols := 0
	for row, component := range components {
		order := walkString(topo, component)
		for col, id := range order {
			positions[index[id]] = Position{
				X: layoutOriginX + float64(col)*turbineColSpacing,
				Y: layoutOriginY + float64(row)*turbineRowSpacing,
			}
		}
		maxCols = max(maxCols, len(order))
	}

	substationX := layoutOriginX + float64(maxCols-1)*turbineColSpacing + substationGap
	centerY := layoutOriginY + float64(len(components)-1)*turbineRowSpacing/2
	for k, i := range substations {
		offset := float64(k) - float64(len(substations)-1)/2
		positions[i] = Position{X: substationX, Y: centerY + offset*turbineRowSpacing}
	}

	for k, i := range others {
		positions[i] = Position{
			X: substationX + otherNodesGap,
			Y: layoutOriginY + float64(k)*turbineRowSpacing,
		}
	}

	// 重复 ID 的节点与首个同 ID 节点重叠
	for i, n := range nodes {
		if first := index[n.ID]; first != i && n.Type.IsTurbine() {
			positions[i] = positions[first]
		}
	}
	return positions
}

// walkString 从度为 1 的端点 (没有则取第一个节点) 出发沿邻居链走出列顺序,
// 剩余未走到的节点按分量顺序追加
func walkString(topo *Topology, component []string) []string {
	start := component[0]
	for _, id := range component {
		if topo.Degree(id) <= 1 {
			start = id
			break
		}
	}

	visited := map[string]bool{start: true}
	order := []string{start}
	for cur := start; ; {
		next := ""
		for _, l := range topo.GetNeighbors(cur) {
			if !visited[l.To] {
				next = l.To
				break
			}
		}
		if next == "" {
			break
		}
		visited[next] = true
		order = append(order, next)
		cur = next
	}

	for _, id := range component {
		if !visited[id] {
			order = append(order, id)
		}
	}
	return order
}

func isSubstationBlock(t model.NodeType) bool {
	switch t {
	case model.NodeOffshoreSubstation, model.NodeOnshoreSubstation:
		return true
	case model.NodeBus, model.NodeWindTurbine, model.NodeExternalGrid, model.NodeGenerator, model.NodeLoad:
		return false
	}
	return false
}

// ComputeGridLayout 通用网格布局
// 所有节点都有地理坐标时按经度自西向东、同经度按纬度自北向南排序, 否则保持插入顺序;
// 升压站单独排在其他节点之后的新行, 避免与风电场子布局重叠
func ComputeGridLayout(nodes []model.MapNode) []Position {
	order := make([]int, len(nodes))
	allGeo := len(nodes) > 0
	for i, n := range nodes {
		order[i] = i
		if !n.HasGeo() {
			allGeo = false
		}
	}
	if allGeo {
		sort.SliceStable(order, func(a, b int) bool {
			na, nb := nodes[order[a]], nodes[order[b]]
			if na.Lng != nb.Lng {
				return na.Lng < nb.Lng
			}
			return na.Lat > nb.Lat
		})
	}

	var regular, substations []int
	for _, i := range order {
		if isSubstationBlock(nodes[i].Type) {
			substations = append(substations, i)
		} else {
			regular = append(regular, i)
		}
	}

	positions := make([]Position, len(nodes))
	place := func(i, slot, rowOffset int) {
		positions[i] = Position{
			X: layoutOriginX + float64(slot%gridColumns)*gridSpacingX,
			Y: layoutOriginY + float64(rowOffset+slot/gridColumns)*gridSpacingY,
		}
	}
	for slot, i := range regular {
		place(i, slot, 0)
	}
	substationRow := (len(regular) + gridColumns - 1) / gridColumns
	for slot, i := range substations {
		place(i, slot, substationRow)
	}
	return positions
}
