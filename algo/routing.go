package algo

import (
	"math"
	"sort"
	"windfarm-planner/model"
	"windfarm-planner/utils"
)

// DefaultMaxTurbinesPerString 每串风机的默认上限
const DefaultMaxTurbinesPerString = 5

// TurbineString 一个风机串: 串联的若干台风机, 通过一条主干电缆接入升压站
type TurbineString struct {
	Substation model.MapNode
	Turbines   []model.MapNode
}

// RoutedCable 路由结果中的一条电缆, Coords 为 [[lat,lng],[lat,lng]]
// ID 由调用方分配
type RoutedCable struct {
	From   string       `json:"from"`
	To     string       `json:"to"`
	Coords [][2]float64 `json:"coords"`
}

// Points 将坐标转换为 GeoPoint 列表
func (c RoutedCable) Points() []model.GeoPoint {
	points := make([]model.GeoPoint, len(c.Coords))
	for i, p := range c.Coords {
		points[i] = model.GeoPoint{Lat: p[0], Lng: p[1]}
	}
	return points
}

// Segment 参与交叉计数的直线段, FromID/ToID 用于排除共享端点的相邻线段
type Segment struct {
	FromID string
	ToID   string
	A      model.GeoPoint
	B      model.GeoPoint
}

func newSegment(from, to model.MapNode) Segment {
	return Segment{FromID: from.ID, ToID: to.ID, A: from.Point(), B: to.Point()}
}

func (s Segment) sharesEndpoint(o Segment) bool {
	return s.FromID == o.FromID || s.FromID == o.ToID || s.ToID == o.FromID || s.ToID == o.ToID
}

func (s Segment) cable() RoutedCable {
	return RoutedCable{
		From:   s.FromID,
		To:     s.ToID,
		Coords: [][2]float64{{s.A.Lat, s.A.Lng}, {s.B.Lat, s.B.Lng}},
	}
}

// CountNewCrossings 统计候选线段与已布置线段之间新增的交叉数
// 共享端点的线段 (相邻线段) 不计入
func CountNewCrossings(candidate, placed []Segment) int {
	crossings := 0
	for _, c := range candidate {
		for _, p := range placed {
			if c.sharesEndpoint(p) {
				continue
			}
			if utils.SegmentsIntersect(c.A, c.B, p.A, p.B) {
				crossings++
			}
		}
	}
	return crossings
}

// splitByType 拆分出风机和海上升压站, 其余类型不参与阵列布线
func splitByType(nodes []model.MapNode) (turbines, substations []model.MapNode) {
	for _, n := range nodes {
		switch n.Type {
		case model.NodeWindTurbine:
			turbines = append(turbines, n)
		case model.NodeOffshoreSubstation:
			substations = append(substations, n)
		case model.NodeBus, model.NodeOnshoreSubstation, model.NodeExternalGrid,
			model.NodeGenerator, model.NodeLoad:
		}
	}
	return turbines, substations
}

func nodeDistance(a, b model.MapNode) float64 {
	return utils.HaversineDistanceKm(a.Lat, a.Lng, b.Lat, b.Lng)
}

// bearing 从升压站看风机的方位角
func bearing(sub, t model.MapNode) float64 {
	return math.Atan2(t.Lng-sub.Lng, t.Lat-sub.Lat)
}

// PlanStrings 完成分组阶段: 就近分配升压站、按方位角排序、切块、合并孤立风机
// 返回的风机串顺序为升压站输入顺序, 串内顺序尚未优化
func PlanStrings(nodes []model.MapNode, maxPerString int) []TurbineString {
	if maxPerString <= 0 {
		maxPerString = DefaultMaxTurbinesPerString
	}
	turbines, substations := splitByType(nodes)
	if len(turbines) == 0 || len(substations) == 0 {
		return nil
	}

	// 1. 就近分配, 距离相等时先出现的升压站优先
	assigned := make([][]model.MapNode, len(substations))
	for _, t := range turbines {
		best := 0
		bestDist := nodeDistance(t, substations[0])
		for i := 1; i < len(substations); i++ {
			if d := nodeDistance(t, substations[i]); d < bestDist {
				best, bestDist = i, d
			}
		}
		assigned[best] = append(assigned[best], t)
	}

	var result []TurbineString
	for i, sub := range substations {
		group := assigned[i]
		if len(group) == 0 {
			continue
		}

		// 2. 方位角排序
		sort.SliceStable(group, func(a, b int) bool {
			return bearing(sub, group[a]) < bearing(sub, group[b])
		})

		// 3. 切块, 4. 合并孤立风机
		chunks := mergeOrphans(chunk(group, maxPerString), maxPerString)
		for _, c := range chunks {
			result = append(result, TurbineString{Substation: sub, Turbines: c})
		}
	}
	return result
}

func chunk(group []model.MapNode, size int) [][]model.MapNode {
	var chunks [][]model.MapNode
	for start := 0; start < len(group); start += size {
		end := min(start+size, len(group))
		c := make([]model.MapNode, end-start)
		copy(c, group[start:end])
		chunks = append(chunks, c)
	}
	return chunks
}

// mergeOrphans 把只有一台风机的串并入含有距其最近风机且未满的串
// 倒序扫描, 删除当前下标不会影响尚未处理的下标
func mergeOrphans(chunks [][]model.MapNode, maxPerString int) [][]model.MapNode {
	for i := len(chunks) - 1; i >= 0; i-- {
		if len(chunks[i]) != 1 {
			continue
		}
		orphan := chunks[i][0]

		target := -1
		bestDist := math.Inf(1)
		for j, c := range chunks {
			if j == i || len(c)+1 > maxPerString {
				continue
			}
			for _, t := range c {
				if d := nodeDistance(orphan, t); d < bestDist {
					target, bestDist = j, d
				}
			}
		}
		if target < 0 {
			continue
		}

		chunks[target] = append(chunks[target], orphan)
		chunks = append(chunks[:i], chunks[i+1:]...)
	}
	return chunks
}

// nearestNeighborChain 从 seed 出发, 每次连接距链尾最近的剩余风机
func nearestNeighborChain(seed model.MapNode, turbines []model.MapNode) []model.MapNode {
	remaining := make([]model.MapNode, 0, len(turbines))
	for _, t := range turbines {
		if t.ID != seed.ID {
			remaining = append(remaining, t)
		}
	}

	chain := []model.MapNode{seed}
	for len(remaining) > 0 {
		last := chain[len(chain)-1]
		next := 0
		nextDist := nodeDistance(last, remaining[0])
		for k := 1; k < len(remaining); k++ {
			if d := nodeDistance(last, remaining[k]); d < nextDist {
				next, nextDist = k, d
			}
		}
		chain = append(chain, remaining[next])
		remaining = append(remaining[:next], remaining[next+1:]...)
	}
	return chain
}

func reversed(chain []model.MapNode) []model.MapNode {
	out := make([]model.MapNode, len(chain))
	for i, n := range chain {
		out[len(chain)-1-i] = n
	}
	return out
}

// stringSegments 按路径顺序生成风机间线段, 最后一段从路径末端风机接入升压站
func stringSegments(path []model.MapNode, sub model.MapNode) []Segment {
	segs := make([]Segment, 0, len(path))
	for k := 0; k+1 < len(path); k++ {
		segs = append(segs, newSegment(path[k], path[k+1]))
	}
	return append(segs, newSegment(path[len(path)-1], sub))
}

// orderString 选择串内连接顺序
// 候选: 最近/最远风机两个起点 × 升压站接在链首/链尾, 共 4 种;
// 新增交叉最少者胜出, 相同时取主干电缆更短者
func orderString(s TurbineString, placed []Segment) []Segment {
	sub := s.Substation
	closest, farthest := s.Turbines[0], s.Turbines[0]
	for _, t := range s.Turbines[1:] {
		if nodeDistance(t, sub) < nodeDistance(closest, sub) {
			closest = t
		}
		if nodeDistance(t, sub) > nodeDistance(farthest, sub) {
			farthest = t
		}
	}

	var best []Segment
	bestCrossings := math.MaxInt
	bestTrunk := math.Inf(1)
	for _, seed := range []model.MapNode{closest, farthest} {
		chain := nearestNeighborChain(seed, s.Turbines)
		// 路径末端接升压站: reversed(chain) 表示升压站接在链首
		for _, path := range [][]model.MapNode{reversed(chain), chain} {
			segs := stringSegments(path, sub)
			crossings := CountNewCrossings(segs, placed)
			trunk := nodeDistance(path[len(path)-1], sub)
			if crossings < bestCrossings || (crossings == bestCrossings && trunk < bestTrunk) {
				best, bestCrossings, bestTrunk = segs, crossings, trunk
			}
		}
	}
	return best
}

// ComputeOffshoreCableRouting 计算海上风电场阵列电缆拓扑
// existing 为已有的非阵列电缆, 仅作为交叉计数的背景; 没有风机或没有升压站时返回空列表。
// 贪心算法, 结果依赖风机串的处理顺序, 并非全局最优。
func ComputeOffshoreCableRouting(nodes []model.MapNode, existing []model.CableRef, maxPerString int) []RoutedCable {
	cables := []RoutedCable{}
	strs := PlanStrings(nodes, maxPerString)
	if len(strs) == 0 {
		return cables
	}

	byID := make(map[string]model.MapNode, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}
	placed := make([]Segment, 0, len(existing)+len(nodes))
	for _, ref := range existing {
		from, okFrom := byID[ref.From]
		to, okTo := byID[ref.To]
		if okFrom && okTo {
			placed = append(placed, newSegment(from, to))
		}
	}

	for _, s := range strs {
		for _, seg := range orderString(s, placed) {
			cables = append(cables, seg.cable())
			placed = append(placed, seg)
		}
	}
	return cables
}
