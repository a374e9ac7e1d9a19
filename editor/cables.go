package editor

import (
	"fmt"
	"log"
	"windfarm-planner/algo"
	"windfarm-planner/model"
	"windfarm-planner/utils"
)

// CableInput 手动新增电缆的参数
type CableInput struct {
	From      string           `json:"from" binding:"required"`
	To        string           `json:"to" binding:"required"`
	Coords    []model.GeoPoint `json:"coords"` // 可选的中间走线, 首尾会被对齐到端点
	VoltageKv float64          `json:"voltage_kv"`
	ROhmPerKm float64          `json:"r_ohm_per_km"`
	XOhmPerKm float64          `json:"x_ohm_per_km"`
	MaxIKa    float64          `json:"max_i_ka"`
}

// AddCable 手动新增电缆, 两端节点必须存在
func (e *Editor) AddCable(in CableInput) (model.MapCable, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	from, okFrom := e.nodes[in.From]
	to, okTo := e.nodes[in.To]
	if !okFrom || !okTo {
		return model.MapCable{}, fmt.Errorf("%w: %s -> %s", ErrNodeNotFound, in.From, in.To)
	}
	if in.From == in.To {
		return model.MapCable{}, fmt.Errorf("%w: 两端不能是同一节点", ErrInvalidCable)
	}

	coords := []model.GeoPoint{from.Point(), to.Point()}
	if len(in.Coords) >= 2 {
		coords = append([]model.GeoPoint(nil), in.Coords...)
		coords[0] = from.Point()
		coords[len(coords)-1] = to.Point()
	}

	c := &model.MapCable{
		ID:        newID(),
		From:      in.From,
		To:        in.To,
		Coords:    coords,
		LengthKm:  utils.PolylineLengthKm(coords),
		VoltageKv: in.VoltageKv,
		ROhmPerKm: in.ROhmPerKm,
		XOhmPerKm: in.XOhmPerKm,
		MaxIKa:    in.MaxIKa,
	}
	e.insertCableLocked(c)
	return *c, e.persistLocked()
}

// DeleteCable 删除电缆
func (e *Editor) DeleteCable(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.cables[id]; !ok {
		return ErrCableNotFound
	}
	e.removeCablesLocked(func(c *model.MapCable) bool { return c.ID == id })
	return e.persistLocked()
}

// AutoRoute 重新计算阵列电缆: 先删除全部旧阵列电缆, 再插入新结果
// maxPerString <= 0 时使用编辑器配置
func (e *Editor) AutoRoute(maxPerString int) ([]model.MapCable, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if maxPerString <= 0 {
		maxPerString = e.opts.MaxTurbinesPerString
	}
	cables := e.autoRouteLocked(maxPerString)
	return cables, e.persistLocked()
}

func (e *Editor) autoRouteLocked(maxPerString int) []model.MapCable {
	removed := e.removeCablesLocked(func(c *model.MapCable) bool { return c.Array })

	existing := make([]model.CableRef, 0, len(e.cableOrder))
	for _, id := range e.cableOrder {
		existing = append(existing, e.cables[id].Ref())
	}
	routed := algo.ComputeOffshoreCableRouting(e.nodeListLocked(), existing, maxPerString)

	cables := make([]model.MapCable, 0, len(routed))
	for _, r := range routed {
		id := fmt.Sprintf("array_%s_%s", r.From, r.To)
		if _, taken := e.cables[id]; taken {
			id = "array_" + newID()
		}
		coords := r.Points()
		c := &model.MapCable{
			ID:        id,
			From:      r.From,
			To:        r.To,
			Coords:    coords,
			LengthKm:  utils.PolylineLengthKm(coords),
			VoltageKv: model.DefaultArrayVoltageKv,
			ROhmPerKm: model.DefaultArrayROhmPerKm,
			XOhmPerKm: model.DefaultArrayXOhmPerKm,
			MaxIKa:    model.DefaultArrayMaxIKa,
			Array:     true,
		}
		e.insertCableLocked(c)
		cables = append(cables, *c)
	}

	log.Printf("自动布线完成: 删除 %d 条旧阵列电缆, 生成 %d 条 (每串最多 %d 台风机)", removed, len(cables), maxPerString)
	return cables
}
