package diagram

import (
	"fmt"
	"strconv"
	"windfarm-planner/algo"
	"windfarm-planner/model"
)

// 示意图样式与尺寸
const (
	RootParent = "1"

	busWidth       = 80.0
	busHeight      = 6.0
	componentSize  = 30.0
	componentDropY = 40.0

	StyleBus          = "shape=line;strokeWidth=4;"
	StyleLine         = "endArrow=none;edgeStyle=orthogonalEdgeStyle;"
	StyleConnector    = "endArrow=none;"
	StyleStaticGen    = "shape=staticGenerator;"
	StyleExternalGrid = "shape=externalGrid;"
	StyleGenerator    = "shape=generator;"
	StyleLoad         = "shape=load;"
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// componentStyle 节点挂接的电气元件, 母线和陆上升压站只有母线本身
func componentStyle(t model.NodeType) (style string, ok bool) {
	switch t {
	case model.NodeWindTurbine:
		return StyleStaticGen, true
	case model.NodeOffshoreSubstation, model.NodeExternalGrid:
		return StyleExternalGrid, true
	case model.NodeGenerator:
		return StyleGenerator, true
	case model.NodeLoad:
		return StyleLoad, true
	case model.NodeBus, model.NodeOnshoreSubstation:
		return "", false
	}
	return "", false
}

// BusID 节点对应的母线顶点 ID
func BusID(nodeID string) string { return "bus_" + nodeID }

// Build 根据节点、电缆和布局坐标在 canvas 上生成示意图
// 每个节点生成一条母线, 风机/升压站等再挂一个元件顶点; 每条电缆生成一条线路连线
func Build(canvas Canvas, nodes []model.MapNode, cables []model.MapCable, positions []algo.Position) error {
	if len(positions) != len(nodes) {
		return fmt.Errorf("布局坐标数量 (%d) 与节点数量 (%d) 不一致", len(positions), len(nodes))
	}

	buses := make(map[string]*Cell, len(nodes))
	for i, n := range nodes {
		p := positions[i]
		bus, err := canvas.InsertVertex(RootParent, BusID(n.ID), n.Name, p.X, p.Y, busWidth, busHeight, StyleBus)
		if err != nil {
			return fmt.Errorf("插入母线 %s 失败: %w", n.ID, err)
		}
		bus.SetAttribute("name", n.Name)
		bus.SetAttribute("vn_kv", formatFloat(n.VnKv))
		bus.SetAttribute("node_type", string(n.Type))
		buses[n.ID] = bus

		style, ok := componentStyle(n.Type)
		if !ok {
			continue
		}
		comp, err := canvas.InsertVertex(RootParent, "el_"+n.ID, n.Name,
			p.X+(busWidth-componentSize)/2, p.Y+componentDropY, componentSize, componentSize, style)
		if err != nil {
			return fmt.Errorf("插入元件 %s 失败: %w", n.ID, err)
		}
		comp.SetAttribute("name", n.Name)
		comp.SetAttribute("p_mw", formatFloat(n.PMw))
		for k, v := range n.Props {
			comp.SetAttribute(k, formatFloat(v))
		}
		if _, err := canvas.InsertEdge(RootParent, "conn_"+n.ID, "", comp, bus, StyleConnector); err != nil {
			return fmt.Errorf("连接元件 %s 失败: %w", n.ID, err)
		}
	}

	for _, c := range cables {
		from, to := buses[c.From], buses[c.To]
		if from == nil || to == nil {
			return fmt.Errorf("电缆 %s 的端点不存在", c.ID)
		}
		line, err := canvas.InsertEdge(RootParent, "line_"+c.ID, c.ID, from, to, StyleLine)
		if err != nil {
			return fmt.Errorf("插入线路 %s 失败: %w", c.ID, err)
		}
		line.SetAttribute("length_km", formatFloat(c.LengthKm))
		line.SetAttribute("vn_kv", formatFloat(c.VoltageKv))
		line.SetAttribute("r_ohm_per_km", formatFloat(c.ROhmPerKm))
		line.SetAttribute("x_ohm_per_km", formatFloat(c.XOhmPerKm))
		line.SetAttribute("max_i_ka", formatFloat(c.MaxIKa))
	}
	return nil
}
