package editor

import (
	"fmt"
	"log"
	"math"
	"windfarm-planner/algo"
	"windfarm-planner/model"
	"windfarm-planner/utils"
)

// AreaInput 新增区域的参数
type AreaInput struct {
	Name   string           `json:"name"`
	Coords []model.GeoPoint `json:"coords" binding:"required"`
}

// PlacementReport 风机布置结果
type PlacementReport struct {
	AreaID    string           `json:"area_id"`
	Requested int              `json:"requested"`
	Placed    int              `json:"placed"`
	Nodes     []model.MapNode  `json:"nodes"`
	Cables    []model.MapCable `json:"cables,omitempty"` // 自动布线生成的阵列电缆
	Warning   string           `json:"warning,omitempty"`
}

// IsClosingClick 绘制多边形时判断点击是否落在首点附近 (闭合多边形)
func IsClosingClick(first, click model.GeoPoint) bool {
	return math.Abs(first.Lat-click.Lat) <= ClosingToleranceDeg &&
		math.Abs(first.Lng-click.Lng) <= ClosingToleranceDeg
}

// AddArea 新增风机布置区域
// 与首点重合的闭合点会被去掉, 顶点统一为逆时针顺序
func (e *Editor) AddArea(in AreaInput) (model.MapArea, error) {
	ring := utils.NormalizeRing(in.Coords, ClosingToleranceDeg)
	if len(ring) < 3 {
		return model.MapArea{}, ErrDegeneratePolygon
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	a := &model.MapArea{ID: newID(), Name: in.Name, Coords: ring}
	if a.Name == "" {
		a.Name = fmt.Sprintf("Area %d", len(e.areaOrder)+1)
	}
	e.insertAreaLocked(a)
	return *a, e.persistLocked()
}

// DeleteArea 删除区域, 已布置的风机保留
func (e *Editor) DeleteArea(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.areas[id]; !ok {
		return ErrAreaNotFound
	}
	delete(e.areas, id)
	for i, aid := range e.areaOrder {
		if aid == id {
			e.areaOrder = append(e.areaOrder[:i], e.areaOrder[i+1:]...)
			break
		}
	}
	return e.persistLocked()
}

// PlaceTurbines 在区域内布置风机
// 区域放不下时只布置能放下的数量, 并在 Warning 中说明
func (e *Editor) PlaceTurbines(areaID string, count int, minDistKm float64) (PlacementReport, error) {
	if count <= 0 || minDistKm <= 0 {
		return PlacementReport{}, fmt.Errorf("%w: 风机数量和最小间距必须大于 0", ErrInvalidPlacement)
	}
	if count > MaxPlacementCount {
		return PlacementReport{}, fmt.Errorf("%w: 单次最多布置 %d 台风机", ErrInvalidPlacement, MaxPlacementCount)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	area, ok := e.areas[areaID]
	if !ok {
		return PlacementReport{}, ErrAreaNotFound
	}
	if cells := algo.GridCellCount(area.Coords, minDistKm); cells > MaxPlacementGridCells {
		return PlacementReport{}, fmt.Errorf("%w: 间距 %.3f 公里过小, 需扫描 %.0f 个格点", ErrInvalidPlacement, minDistKm, cells)
	}

	points := algo.PlaceTurbinesInPolygon(area.Coords, count, minDistKm)
	report := PlacementReport{
		AreaID:    areaID,
		Requested: count,
		Placed:    len(points),
		Nodes:     make([]model.MapNode, 0, len(points)),
	}
	for _, p := range points {
		n := e.newNodeLocked(NodeInput{Type: model.NodeWindTurbine, Lat: p.Lat, Lng: p.Lng})
		report.Nodes = append(report.Nodes, *n)
	}
	area.TurbineCount = count
	area.MinDistanceKm = minDistKm

	if report.Placed < count {
		report.Warning = fmt.Sprintf("仅布置了 %d / %d 台风机, 区域面积不足以满足 %.2f 公里的间距", report.Placed, count, minDistKm)
		log.Printf("区域 %s: %s", area.Name, report.Warning)
	}

	if e.opts.AutoRoute && report.Placed > 0 && e.hasSubstationLocked() {
		report.Cables = e.autoRouteLocked(e.opts.MaxTurbinesPerString)
	}
	return report, e.persistLocked()
}
