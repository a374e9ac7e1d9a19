package model

// MapArea 用于布置风机的闭合多边形区域
type MapArea struct {
	ID     string     `json:"id" gorm:"primaryKey"`
	Name   string     `json:"name"`
	Coords []GeoPoint `json:"coords" gorm:"serializer:json"` // 不含重复的闭合点

	// 最近一次布置风机时使用的参数, 仅用于回显, 不约束已放置的节点
	TurbineCount  int     `json:"turbine_count"`
	MinDistanceKm float64 `json:"min_distance_km"`

	Seq int `json:"-" gorm:"index"` // 持久化时的排列顺序
}

// ProjectData 用于导入/导出整个工程
type ProjectData struct {
	Meta   map[string]interface{} `json:"meta,omitempty"`
	Nodes  []MapNode              `json:"nodes"`
	Cables []MapCable             `json:"cables"`
	Areas  []MapArea              `json:"areas"`
}
