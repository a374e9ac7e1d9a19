package editor

import (
	"fmt"
	"strconv"
	"strings"
	"windfarm-planner/model"
	"windfarm-planner/utils"
)

// NodeInput 新增节点的参数
type NodeInput struct {
	Type  model.NodeType     `json:"type" binding:"required"`
	Name  string             `json:"name"`
	Lat   float64            `json:"lat"`
	Lng   float64            `json:"lng"`
	VnKv  float64            `json:"vn_kv"`
	PMw   float64            `json:"p_mw"`
	Props map[string]float64 `json:"props"`
	Tags  []string           `json:"tags"`
}

// 各类型节点的默认参数
var nodeDefaults = map[model.NodeType]struct {
	prefix string
	vnKv   float64
	pMw    float64
}{
	model.NodeBus:                {"Bus", 66, 0},
	model.NodeWindTurbine:        {"WT", 66, 15},
	model.NodeOffshoreSubstation: {"OSS", 66, 0},
	model.NodeOnshoreSubstation:  {"Onshore", 220, 0},
	model.NodeExternalGrid:       {"Grid", 220, 0},
	model.NodeGenerator:          {"Gen", 20, 50},
	model.NodeLoad:               {"Load", 20, 10},
}

// nextNameIndexLocked 返回默认名称 "<prefix> n" 的下一个序号 (现有最大序号 + 1)
func (e *Editor) nextNameIndexLocked(prefix string) int {
	highest := 0
	for _, n := range e.nodes {
		suffix, ok := strings.CutPrefix(n.Name, prefix+" ")
		if !ok {
			continue
		}
		if i, err := strconv.Atoi(suffix); err == nil && i > highest {
			highest = i
		}
	}
	return highest + 1
}

func (e *Editor) newNodeLocked(in NodeInput) *model.MapNode {
	def := nodeDefaults[in.Type]
	n := &model.MapNode{
		ID:    newID(),
		Type:  in.Type,
		Name:  in.Name,
		Lat:   in.Lat,
		Lng:   in.Lng,
		VnKv:  in.VnKv,
		PMw:   in.PMw,
		Props: in.Props,
		Tags:  in.Tags,
	}
	if n.Name == "" {
		n.Name = fmt.Sprintf("%s %d", def.prefix, e.nextNameIndexLocked(def.prefix))
	}
	if n.VnKv == 0 {
		n.VnKv = def.vnKv
	}
	if n.PMw == 0 {
		n.PMw = def.pMw
	}
	e.insertNodeLocked(n)
	return n
}

// AddNode 新增节点; 新增海上升压站且开启自动布线时重新布线
func (e *Editor) AddNode(in NodeInput) (model.MapNode, error) {
	if !in.Type.Valid() {
		return model.MapNode{}, fmt.Errorf("%w: %q", ErrInvalidNodeType, in.Type)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	n := e.newNodeLocked(in)
	if n.Type.IsSubstation() && e.opts.AutoRoute {
		e.autoRouteLocked(e.opts.MaxTurbinesPerString)
	}
	return *n, e.persistLocked()
}

// MoveNode 移动节点, 所有相连电缆的端点坐标和长度随之更新
func (e *Editor) MoveNode(id string, lat, lng float64) (model.MapNode, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	n, ok := e.nodes[id]
	if !ok {
		return model.MapNode{}, ErrNodeNotFound
	}
	n.Lat, n.Lng = lat, lng

	pos := n.Point()
	for _, cid := range e.cableOrder {
		c := e.cables[cid]
		if c.From != id && c.To != id {
			continue
		}
		if len(c.Coords) < 2 {
			c.Coords = []model.GeoPoint{e.nodes[c.From].Point(), e.nodes[c.To].Point()}
		}
		if c.From == id {
			c.Coords[0] = pos
		}
		if c.To == id {
			c.Coords[len(c.Coords)-1] = pos
		}
		c.LengthKm = utils.PolylineLengthKm(c.Coords)
	}
	return *n, e.persistLocked()
}

// DeleteNode 删除节点及其所有相连电缆
func (e *Editor) DeleteNode(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.nodes[id]; !ok {
		return ErrNodeNotFound
	}
	delete(e.nodes, id)
	for i, nid := range e.nodeOrder {
		if nid == id {
			e.nodeOrder = append(e.nodeOrder[:i], e.nodeOrder[i+1:]...)
			break
		}
	}
	e.removeCablesLocked(func(c *model.MapCable) bool {
		return c.From == id || c.To == id
	})
	return e.persistLocked()
}
