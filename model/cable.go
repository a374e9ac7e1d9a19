package model

// MapCable 对应两个节点之间的一条电缆
type MapCable struct {
	ID        string     `json:"id" gorm:"primaryKey"`
	From      string     `json:"from" gorm:"index"`
	To        string     `json:"to" gorm:"index"`
	Coords    []GeoPoint `json:"coords" gorm:"serializer:json"`
	LengthKm  float64    `json:"length_km"` // 由 Coords 推算, 不作为权威数据
	VoltageKv float64    `json:"voltage_kv"`
	ROhmPerKm float64    `json:"r_ohm_per_km"`
	XOhmPerKm float64    `json:"x_ohm_per_km"`
	MaxIKa    float64    `json:"max_i_ka"`

	// Array 为 true 表示由自动布线生成的阵列电缆, 每次重新布线时整体替换
	Array bool `json:"array" gorm:"index"`

	Seq int `json:"-" gorm:"index"` // 持久化时的排列顺序
}

// Ref 返回电缆的端点描述
func (c MapCable) Ref() CableRef {
	return CableRef{From: c.From, To: c.To}
}

// CableRef 路由和布局算法所需的最小电缆描述
type CableRef struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Array cable defaults (66 kV XLPE submarine cable).
const (
	DefaultArrayVoltageKv = 66.0
	DefaultArrayROhmPerKm = 0.0754
	DefaultArrayXOhmPerKm = 0.1220
	DefaultArrayMaxIKa    = 0.550
)
