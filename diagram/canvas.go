// Package diagram 把布线后的拓扑转换为电气示意图
package diagram

import "fmt"

// Cell 示意图中的一个顶点或连线, 电气参数以属性形式保存在 Value 上
type Cell struct {
	ID     string            `json:"id"`
	Parent string            `json:"parent,omitempty"`
	Label  string            `json:"label"`
	Style  string            `json:"style"`
	Vertex bool              `json:"vertex"`
	X      float64           `json:"x,omitempty"`
	Y      float64           `json:"y,omitempty"`
	Width  float64           `json:"width,omitempty"`
	Height float64           `json:"height,omitempty"`
	Source string            `json:"source,omitempty"`
	Target string            `json:"target,omitempty"`
	Value  map[string]string `json:"value,omitempty"`
}

// SetAttribute 设置属性
func (c *Cell) SetAttribute(key, value string) {
	if c.Value == nil {
		c.Value = make(map[string]string)
	}
	c.Value[key] = value
}

// GetAttribute 读取属性, 不存在时返回空字符串
func (c *Cell) GetAttribute(key string) string {
	return c.Value[key]
}

// Canvas 二维图形库的最小接口
type Canvas interface {
	InsertVertex(parent, id, label string, x, y, w, h float64, style string) (*Cell, error)
	InsertEdge(parent, id, label string, source, target *Cell, style string) (*Cell, error)
}

// Model 内存中的 Canvas 实现, 按插入顺序保存所有单元
type Model struct {
	Cells []*Cell `json:"cells"`
	index map[string]*Cell
}

// NewModel 创建空模型
func NewModel() *Model {
	return &Model{index: make(map[string]*Cell)}
}

// Cell 按 ID 查找单元
func (m *Model) Cell(id string) *Cell {
	return m.index[id]
}

func (m *Model) add(c *Cell) (*Cell, error) {
	if c.ID == "" {
		return nil, fmt.Errorf("单元 ID 不能为空")
	}
	if _, exists := m.index[c.ID]; exists {
		return nil, fmt.Errorf("单元 %s 已存在", c.ID)
	}
	if m.index == nil {
		m.index = make(map[string]*Cell)
	}
	m.Cells = append(m.Cells, c)
	m.index[c.ID] = c
	return c, nil
}

// InsertVertex 插入顶点
func (m *Model) InsertVertex(parent, id, label string, x, y, w, h float64, style string) (*Cell, error) {
	return m.add(&Cell{
		ID: id, Parent: parent, Label: label, Style: style, Vertex: true,
		X: x, Y: y, Width: w, Height: h,
	})
}

// InsertEdge 插入连线, 两端必须是已存在的单元
func (m *Model) InsertEdge(parent, id, label string, source, target *Cell, style string) (*Cell, error) {
	if source == nil || target == nil || m.index[source.ID] == nil || m.index[target.ID] == nil {
		return nil, fmt.Errorf("连线 %s 的端点不存在", id)
	}
	return m.add(&Cell{
		ID: id, Parent: parent, Label: label, Style: style,
		Source: source.ID, Target: target.ID,
	})
}
