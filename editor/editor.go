// Package editor 管理地图编辑器的节点、电缆和区域, 并调用布置/布线/布局算法
package editor

import (
	"errors"
	"fmt"
	"log"
	"maps"
	"slices"
	"sync"
	"windfarm-planner/algo"
	"windfarm-planner/diagram"
	"windfarm-planner/model"
	"windfarm-planner/utils"

	"github.com/google/uuid"
)

var (
	ErrNodeNotFound      = errors.New("节点不存在")
	ErrCableNotFound     = errors.New("电缆不存在")
	ErrAreaNotFound      = errors.New("区域不存在")
	ErrInvalidNodeType   = errors.New("无效的节点类型")
	ErrInvalidCable      = errors.New("无效的电缆")
	ErrDegeneratePolygon = errors.New("多边形至少需要 3 个不同的顶点")
	ErrInvalidPlacement  = errors.New("无效的风机布置参数")
	ErrInvalidProject    = errors.New("无效的工程数据")
)

const (
	// ClosingToleranceDeg 绘制多边形时, 点击位置距首点在此范围内视为闭合
	ClosingToleranceDeg = 0.0005

	// MaxPlacementCount 单次布置风机数量上限
	MaxPlacementCount = 2000
	// MaxPlacementGridCells 单次布置扫描的格点数上限
	MaxPlacementGridCells = 1_000_000
)

// Store 工程持久化接口
type Store interface {
	Load() (model.ProjectData, error)
	Save(model.ProjectData) error
}

// Options 编辑器配置
type Options struct {
	MaxTurbinesPerString int
	AutoRoute            bool  // 新增海上升压站或布置风机后自动重新布线
	Store                Store // 为 nil 时不持久化
}

// Editor 编辑器状态, 所有方法并发安全
type Editor struct {
	mu sync.RWMutex

	nodes      map[string]*model.MapNode
	nodeOrder  []string
	cables     map[string]*model.MapCable
	cableOrder []string
	areas      map[string]*model.MapArea
	areaOrder  []string

	opts Options
}

// New 创建空编辑器
func New(opts Options) *Editor {
	if opts.MaxTurbinesPerString <= 0 {
		opts.MaxTurbinesPerString = algo.DefaultMaxTurbinesPerString
	}
	return &Editor{
		nodes:  make(map[string]*model.MapNode),
		cables: make(map[string]*model.MapCable),
		areas:  make(map[string]*model.MapArea),
		opts:   opts,
	}
}

// Load 从 Store 加载工程, 替换当前状态
func (e *Editor) Load() error {
	if e.opts.Store == nil {
		return nil
	}
	data, err := e.opts.Store.Load()
	if err != nil {
		return fmt.Errorf("加载工程失败: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.replaceLocked(data)
	return nil
}

// Import 用给定数据替换当前工程并保存
// 节点 ID 必须非空且唯一, 类型必须有效; 端点不存在的电缆被忽略
func (e *Editor) Import(data model.ProjectData) error {
	seen := make(map[string]bool, len(data.Nodes))
	for _, n := range data.Nodes {
		if n.ID == "" || seen[n.ID] {
			return fmt.Errorf("%w: 节点 ID %q 为空或重复", ErrInvalidProject, n.ID)
		}
		if !n.Type.Valid() {
			return fmt.Errorf("%w: 节点 %s 类型 %q", ErrInvalidProject, n.ID, n.Type)
		}
		seen[n.ID] = true
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.replaceLocked(data)
	return e.persistLocked()
}

func (e *Editor) replaceLocked(data model.ProjectData) {
	e.nodes = make(map[string]*model.MapNode, len(data.Nodes))
	e.cables = make(map[string]*model.MapCable, len(data.Cables))
	e.areas = make(map[string]*model.MapArea, len(data.Areas))
	e.nodeOrder, e.cableOrder, e.areaOrder = nil, nil, nil

	for i := range data.Nodes {
		n := data.Nodes[i]
		e.insertNodeLocked(&n)
	}
	for i := range data.Cables {
		c := data.Cables[i]
		if e.nodes[c.From] == nil || e.nodes[c.To] == nil {
			log.Printf("忽略端点不存在的电缆 %s (%s -> %s)", c.ID, c.From, c.To)
			continue
		}
		c.LengthKm = utils.PolylineLengthKm(c.Coords)
		e.insertCableLocked(&c)
	}
	for i := range data.Areas {
		a := data.Areas[i]
		e.insertAreaLocked(&a)
	}
}

func (e *Editor) persistLocked() error {
	if e.opts.Store == nil {
		return nil
	}
	if err := e.opts.Store.Save(e.snapshotLocked()); err != nil {
		return fmt.Errorf("保存工程失败: %w", err)
	}
	return nil
}

// Snapshot 返回当前工程的副本
func (e *Editor) Snapshot() model.ProjectData {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshotLocked()
}

func (e *Editor) snapshotLocked() model.ProjectData {
	return model.ProjectData{
		Nodes:  e.nodeListLocked(),
		Cables: e.cableListLocked(),
		Areas:  e.areaListLocked(),
	}
}

func (e *Editor) nodeListLocked() []model.MapNode {
	nodes := make([]model.MapNode, 0, len(e.nodeOrder))
	for _, id := range e.nodeOrder {
		n := *e.nodes[id]
		n.Props = maps.Clone(n.Props)
		n.Tags = slices.Clone(n.Tags)
		nodes = append(nodes, n)
	}
	return nodes
}

func (e *Editor) cableListLocked() []model.MapCable {
	cables := make([]model.MapCable, 0, len(e.cableOrder))
	for _, id := range e.cableOrder {
		c := *e.cables[id]
		c.Coords = slices.Clone(c.Coords)
		cables = append(cables, c)
	}
	return cables
}

func (e *Editor) areaListLocked() []model.MapArea {
	areas := make([]model.MapArea, 0, len(e.areaOrder))
	for _, id := range e.areaOrder {
		a := *e.areas[id]
		a.Coords = slices.Clone(a.Coords)
		areas = append(areas, a)
	}
	return areas
}

func (e *Editor) insertNodeLocked(n *model.MapNode) {
	if _, exists := e.nodes[n.ID]; !exists {
		e.nodeOrder = append(e.nodeOrder, n.ID)
	}
	e.nodes[n.ID] = n
}

func (e *Editor) insertCableLocked(c *model.MapCable) {
	if _, exists := e.cables[c.ID]; !exists {
		e.cableOrder = append(e.cableOrder, c.ID)
	}
	e.cables[c.ID] = c
}

func (e *Editor) insertAreaLocked(a *model.MapArea) {
	if _, exists := e.areas[a.ID]; !exists {
		e.areaOrder = append(e.areaOrder, a.ID)
	}
	e.areas[a.ID] = a
}

func (e *Editor) removeCablesLocked(drop func(*model.MapCable) bool) int {
	removed := 0
	e.cableOrder = slices.DeleteFunc(e.cableOrder, func(id string) bool {
		if drop(e.cables[id]) {
			delete(e.cables, id)
			removed++
			return true
		}
		return false
	})
	return removed
}

func (e *Editor) hasSubstationLocked() bool {
	for _, n := range e.nodes {
		if n.Type.IsSubstation() {
			return true
		}
	}
	return false
}

// Node 按 ID 获取节点
func (e *Editor) Node(id string) (model.MapNode, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	n, ok := e.nodes[id]
	if !ok {
		return model.MapNode{}, ErrNodeNotFound
	}
	return *n, nil
}

// Nodes 按插入顺序返回所有节点
func (e *Editor) Nodes() []model.MapNode {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.nodeListLocked()
}

// Cables 按插入顺序返回所有电缆
func (e *Editor) Cables() []model.MapCable {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cableListLocked()
}

// Areas 按插入顺序返回所有区域
func (e *Editor) Areas() []model.MapArea {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.areaListLocked()
}

// Layout 计算示意图布局
func (e *Editor) Layout() LayoutResult {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.layoutLocked()
}

// LayoutResult 布局结果, 坐标按节点 ID 索引
type LayoutResult struct {
	Kind      algo.LayoutKind          `json:"kind"`
	Positions map[string]algo.Position `json:"positions"`
}

func (e *Editor) layoutLocked() LayoutResult {
	nodes := e.nodeListLocked()
	refs := make([]model.CableRef, 0, len(e.cableOrder))
	for _, id := range e.cableOrder {
		refs = append(refs, e.cables[id].Ref())
	}

	positions, kind := algo.ComputeLayout(nodes, refs)
	result := LayoutResult{Kind: kind, Positions: make(map[string]algo.Position, len(nodes))}
	for i, n := range nodes {
		result.Positions[n.ID] = positions[i]
	}
	return result
}

// BuildDiagram 按当前布局在 canvas 上生成电气示意图
func (e *Editor) BuildDiagram(canvas diagram.Canvas) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	layout := e.layoutLocked()
	nodes := e.nodeListLocked()
	positions := make([]algo.Position, len(nodes))
	for i, n := range nodes {
		positions[i] = layout.Positions[n.ID]
	}
	return diagram.Build(canvas, nodes, e.cableListLocked(), positions)
}

// FeederPath 追踪风机到最近升压站的电缆路径
func (e *Editor) FeederPath(nodeID string) (algo.PathResult, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.nodes[nodeID] == nil {
		return algo.PathResult{}, ErrNodeNotFound
	}
	topo := algo.BuildTopology(e.nodeListLocked(), e.cableListLocked())
	result := topo.FeederPath(nodeID)
	log.Printf("馈线追踪 %s: %s", nodeID, topo.FormatPath(result))
	return result, nil
}

// newID 生成不会重复使用的 ID
func newID() string {
	return uuid.NewString()
}
