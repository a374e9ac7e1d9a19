package model

import "github.com/lib/pq"

// GeoPoint 代表一个经纬度点 (WGS84, 单位: 度)
type GeoPoint struct {
	Lat float64 `json:"lat"` // 纬度
	Lng float64 `json:"lng"` // 经度
}

// NodeType 地图上电气元件的类型 (封闭集合)
type NodeType string

const (
	NodeBus                NodeType = "bus"
	NodeWindTurbine        NodeType = "offshore_wind_turbine"
	NodeOffshoreSubstation NodeType = "offshore_substation"
	NodeOnshoreSubstation  NodeType = "onshore_substation"
	NodeExternalGrid       NodeType = "external_grid"
	NodeGenerator          NodeType = "generator"
	NodeLoad               NodeType = "load"
)

// Valid 判断类型是否属于已知集合
func (t NodeType) Valid() bool {
	switch t {
	case NodeBus, NodeWindTurbine, NodeOffshoreSubstation, NodeOnshoreSubstation,
		NodeExternalGrid, NodeGenerator, NodeLoad:
		return true
	default:
		return false
	}
}

// IsTurbine 海上风机
func (t NodeType) IsTurbine() bool {
	return t == NodeWindTurbine
}

// IsSubstation 海上升压站 (阵列电缆的汇集点)
func (t NodeType) IsSubstation() bool {
	return t == NodeOffshoreSubstation
}

// MapNode 对应地图上放置的一个电气元件
type MapNode struct {
	ID    string             `json:"id" gorm:"primaryKey"`
	Type  NodeType           `json:"type" gorm:"index"`
	Name  string             `json:"name" gorm:"index"`
	Lat   float64            `json:"lat"`
	Lng   float64            `json:"lng"`
	VnKv  float64            `json:"vn_kv"`                                  // 额定电压 (kV)
	PMw   float64            `json:"p_mw"`                                   // 有功功率 (MW)
	Props map[string]float64 `json:"props,omitempty" gorm:"serializer:json"` // 类型相关的附加参数
	Tags  pq.StringArray     `json:"tags,omitempty" gorm:"type:text[]"`      // 用户标签

	Seq int `json:"-" gorm:"index"` // 持久化时的排列顺序
}

// Point 返回节点的地理坐标
func (n MapNode) Point() GeoPoint {
	return GeoPoint{Lat: n.Lat, Lng: n.Lng}
}

// HasGeo 节点是否带有地理坐标 (0,0 视为未定位)
func (n MapNode) HasGeo() bool {
	return n.Lat != 0 || n.Lng != 0
}
