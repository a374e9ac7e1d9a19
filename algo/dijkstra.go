package algo

import (
	"container/heap"
	"fmt"
	"math"
	"slices"
	"strings"
	"windfarm-planner/model"
)

// PathSegment 馈线路径中的一段电缆
type PathSegment struct {
	FromID   string  `json:"from_id"`
	ToID     string  `json:"to_id"`
	CableID  string  `json:"cable_id"`
	LengthKm float64 `json:"length_km"`
}

// PathResult 馈线追踪结果
type PathResult struct {
	Path         []string      `json:"path"`          // 节点 ID 序列, 起点为风机, 终点为升压站
	Segments     []PathSegment `json:"segments"`      // 路径段详情
	LengthKm     float64       `json:"length_km"`     // 电缆总长度
	SubstationID string        `json:"substation_id"` // 到达的升压站
	Found        bool          `json:"found"`         // 是否找到路径
}

// PriorityQueueItem 优先队列中的元素
type PriorityQueueItem struct {
	NodeID string
	Cost   float64 // 累计电缆长度 (公里)
	Index  int     // 在堆中的索引
}

// PriorityQueue 实现 heap.Interface 接口的优先队列
type PriorityQueue []*PriorityQueueItem

func (pq PriorityQueue) Len() int { return len(pq) }

func (pq PriorityQueue) Less(i, j int) bool {
	return pq[i].Cost < pq[j].Cost
}

func (pq PriorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].Index = i
	pq[j].Index = j
}

func (pq *PriorityQueue) Push(x interface{}) {
	n := len(*pq)
	item := x.(*PriorityQueueItem)
	item.Index = n
	*pq = append(*pq, item)
}

func (pq *PriorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil  // 避免内存泄漏
	item.Index = -1 // 标记为已移除
	*pq = old[0 : n-1]
	return item
}

// isFeederTarget 馈线追踪的终点类型
func isFeederTarget(n model.MapNode) bool {
	switch n.Type {
	case model.NodeOffshoreSubstation, model.NodeOnshoreSubstation:
		return true
	case model.NodeBus, model.NodeWindTurbine, model.NodeExternalGrid, model.NodeGenerator, model.NodeLoad:
		return false
	}
	return false
}

// FeederPath 使用 Dijkstra 算法按电缆长度寻找从起点到最近升压站的路径
func (t *Topology) FeederPath(startID string) PathResult {
	start := t.Nodes[startID]
	if start == nil {
		return PathResult{Found: false}
	}

	dist := make(map[string]float64)
	prevEdge := make(map[string]*Link)
	visited := make(map[string]bool)

	for id := range t.Nodes {
		dist[id] = math.Inf(1) // 无穷大
	}
	dist[startID] = 0

	pq := make(PriorityQueue, 0)
	heap.Init(&pq)
	heap.Push(&pq, &PriorityQueueItem{NodeID: startID, Cost: 0})

	target := ""
	for pq.Len() > 0 {
		current := heap.Pop(&pq).(*PriorityQueueItem)
		currentID := current.NodeID

		if visited[currentID] {
			continue
		}
		visited[currentID] = true

		// 第一个出队的升压站即为最近的升压站
		if currentID != startID && isFeederTarget(*t.Nodes[currentID]) {
			target = currentID
			break
		}

		for _, link := range t.GetNeighbors(currentID) {
			newCost := dist[currentID] + link.LengthKm
			if newCost < dist[link.To] {
				dist[link.To] = newCost
				prevEdge[link.To] = link
				heap.Push(&pq, &PriorityQueueItem{NodeID: link.To, Cost: newCost})
			}
		}
	}

	if target == "" {
		return PathResult{Found: false}
	}

	// 回溯路径
	path := []string{target}
	segments := []PathSegment{}
	for at := target; at != startID; {
		link := prevEdge[at]
		segments = append(segments, PathSegment{
			FromID:   link.From,
			ToID:     link.To,
			CableID:  link.CableID,
			LengthKm: link.LengthKm,
		})
		at = link.From
		path = append(path, at)
	}
	slices.Reverse(path)
	slices.Reverse(segments)

	return PathResult{
		Path:         path,
		Segments:     segments,
		LengthKm:     dist[target],
		SubstationID: target,
		Found:        true,
	}
}

// FormatPath 格式化馈线路径为可读字符串 (用于日志)
func (t *Topology) FormatPath(result PathResult) string {
	if !result.Found {
		return "未找到馈线路径"
	}

	names := make([]string, 0, len(result.Path))
	for _, id := range result.Path {
		if node := t.Nodes[id]; node != nil && node.Name != "" {
			names = append(names, node.Name)
		} else {
			names = append(names, id)
		}
	}
	return fmt.Sprintf("%s (%.2f 公里)", strings.Join(names, " -> "), result.LengthKm)
}
