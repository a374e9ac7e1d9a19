package algo

import (
	"windfarm-planner/model"
	"windfarm-planner/utils"
)

// Link 拓扑图中的一条无向连接 (每条电缆在两个方向各存一份)
type Link struct {
	CableID  string
	From     string
	To       string
	LengthKm float64
}

// Topology 由当前电缆集合临时构建的拓扑图, 不做持久化
type Topology struct {
	Nodes    map[string]*model.MapNode // 节点字典 (ID -> Node)
	AdjList  map[string][]*Link        // 邻接表 (ID -> 连接列表)
	NodeList []model.MapNode           // 节点列表 (保持输入顺序, 用于遍历)
}

// NewTopology 创建只含节点的拓扑图
func NewTopology(nodes []model.MapNode) *Topology {
	t := &Topology{
		Nodes:   make(map[string]*model.MapNode, len(nodes)),
		AdjList: make(map[string][]*Link, len(nodes)),
	}
	seen := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		t.NodeList = append(t.NodeList, n)
	}
	for i := range t.NodeList {
		t.Nodes[t.NodeList[i].ID] = &t.NodeList[i]
	}
	return t
}

// BuildTopology 由节点和电缆构建拓扑图, 电缆长度取 LengthKm (为 0 时按坐标计算)
func BuildTopology(nodes []model.MapNode, cables []model.MapCable) *Topology {
	t := NewTopology(nodes)
	for _, c := range cables {
		length := c.LengthKm
		if length == 0 {
			length = utils.PolylineLengthKm(c.Coords)
		}
		t.AddLink(c.ID, c.From, c.To, length)
	}
	return t
}

// AddLink 添加一条无向连接; 端点不存在、自环或重复连接时忽略
func (t *Topology) AddLink(cableID, from, to string, lengthKm float64) bool {
	if from == to || t.Nodes[from] == nil || t.Nodes[to] == nil {
		return false
	}
	// 检查是否已存在同一对端点的连接 (避免重复添加)
	for _, existing := range t.AdjList[from] {
		if existing.To == to {
			return false
		}
	}
	t.AdjList[from] = append(t.AdjList[from], &Link{CableID: cableID, From: from, To: to, LengthKm: lengthKm})
	t.AdjList[to] = append(t.AdjList[to], &Link{CableID: cableID, From: to, To: from, LengthKm: lengthKm})
	return true
}

// GetNeighbors 获取指定节点的连接
func (t *Topology) GetNeighbors(nodeID string) []*Link {
	return t.AdjList[nodeID]
}

// Degree 节点的连接数
func (t *Topology) Degree(nodeID string) int {
	return len(t.AdjList[nodeID])
}

// Components 广度优先遍历, 返回满足 keep 的节点构成的连通分量
// 分量按 NodeList 中首个节点的顺序排列, 分量内为 BFS 顺序
func (t *Topology) Components(keep func(model.MapNode) bool) [][]string {
	visited := make(map[string]bool)
	var components [][]string

	for _, n := range t.NodeList {
		if visited[n.ID] || !keep(n) {
			continue
		}
		visited[n.ID] = true
		queue := []string{n.ID}
		var component []string
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			component = append(component, cur)
			for _, l := range t.AdjList[cur] {
				if visited[l.To] || !keep(*t.Nodes[l.To]) {
					continue
				}
				visited[l.To] = true
				queue = append(queue, l.To)
			}
		}
		components = append(components, component)
	}
	return components
}

// FindNearestNode 找到离给定坐标最近且满足 keep 的节点, keep 为 nil 时不过滤
func (t *Topology) FindNearestNode(lat, lng float64, keep func(model.MapNode) bool) *model.MapNode {
	var nearest *model.MapNode
	minDist := -1.0

	for i := range t.NodeList {
		node := &t.NodeList[i]
		if keep != nil && !keep(*node) {
			continue
		}
		dist := utils.HaversineDistanceKm(lat, lng, node.Lat, node.Lng)
		if minDist < 0 || dist < minDist {
			minDist = dist
			nearest = node
		}
	}

	return nearest
}
