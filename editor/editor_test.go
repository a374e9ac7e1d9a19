package editor

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"windfarm-planner/algo"
	"windfarm-planner/diagram"
	"windfarm-planner/model"
	"windfarm-planner/utils"

	"gotest.tools/v3/assert"
)

type memStore struct {
	data  model.ProjectData
	saves int
	err   error
}

func (s *memStore) Load() (model.ProjectData, error) { return s.data, s.err }

func (s *memStore) Save(d model.ProjectData) error {
	if s.err != nil {
		return s.err
	}
	s.saves++
	s.data = d
	return nil
}

// squareArea 约 sideKm 公里见方的区域 (北海附近)
func squareArea(sideKm float64) []model.GeoPoint {
	dLat, dLng := utils.KmToDegreesAt(sideKm, 54)
	return []model.GeoPoint{
		{Lat: 54, Lng: 6.5},
		{Lat: 54, Lng: 6.5 + dLng},
		{Lat: 54 + dLat, Lng: 6.5 + dLng},
		{Lat: 54 + dLat, Lng: 6.5},
	}
}

func mustAdd(t *testing.T, e *Editor, in NodeInput) model.MapNode {
	t.Helper()
	n, err := e.AddNode(in)
	assert.NilError(t, err)
	return n
}

func TestAddNodeValidatesType(t *testing.T) {
	e := New(Options{})
	_, err := e.AddNode(NodeInput{Type: "hydro_dam"})
	assert.Assert(t, errors.Is(err, ErrInvalidNodeType))
	assert.Equal(t, len(e.Nodes()), 0)
}

func TestAddNodeDefaults(t *testing.T) {
	e := New(Options{})
	a := mustAdd(t, e, NodeInput{Type: model.NodeWindTurbine, Lat: 54, Lng: 6})
	b := mustAdd(t, e, NodeInput{Type: model.NodeWindTurbine, Lat: 54, Lng: 6.1})

	assert.Equal(t, a.Name, "WT 1")
	assert.Equal(t, b.Name, "WT 2")
	assert.Equal(t, a.VnKv, 66.0)
	assert.Equal(t, a.PMw, 15.0)
	assert.Assert(t, a.ID != b.ID)
}

func TestDefaultNamesAreNotReusedAfterDelete(t *testing.T) {
	e := New(Options{})
	first := mustAdd(t, e, NodeInput{Type: model.NodeWindTurbine, Lat: 54, Lng: 6})
	mustAdd(t, e, NodeInput{Type: model.NodeWindTurbine, Lat: 54, Lng: 6.1})
	mustAdd(t, e, NodeInput{Type: model.NodeWindTurbine, Lat: 54, Lng: 6.2})
	assert.NilError(t, e.DeleteNode(first.ID))

	next := mustAdd(t, e, NodeInput{Type: model.NodeWindTurbine, Lat: 54, Lng: 6.3})
	assert.Equal(t, next.Name, "WT 4")

	names := map[string]bool{}
	for _, n := range e.Nodes() {
		assert.Assert(t, !names[n.Name], "duplicate name %s", n.Name)
		names[n.Name] = true
	}

	// 自定义名称不影响序号, 其他类型各自编号
	mustAdd(t, e, NodeInput{Type: model.NodeWindTurbine, Name: "WT north"})
	oss := mustAdd(t, e, NodeInput{Type: model.NodeOffshoreSubstation, Lat: 53.9, Lng: 6})
	assert.Equal(t, oss.Name, "OSS 1")
	assert.Equal(t, mustAdd(t, e, NodeInput{Type: model.NodeWindTurbine}).Name, "WT 5")
}

func TestMoveNodeUpdatesIncidentCables(t *testing.T) {
	e := New(Options{})
	a := mustAdd(t, e, NodeInput{Type: model.NodeBus, Lat: 54, Lng: 6})
	b := mustAdd(t, e, NodeInput{Type: model.NodeBus, Lat: 54, Lng: 6.1})
	c, err := e.AddCable(CableInput{From: a.ID, To: b.ID})
	assert.NilError(t, err)
	before := c.LengthKm

	_, err = e.MoveNode(b.ID, 54, 6.2)
	assert.NilError(t, err)

	moved := e.Cables()[0]
	assert.Equal(t, moved.Coords[1], model.GeoPoint{Lat: 54, Lng: 6.2})
	assert.Assert(t, moved.LengthKm > before*1.9)

	_, err = e.MoveNode("missing", 0, 0)
	assert.Assert(t, errors.Is(err, ErrNodeNotFound))
}

func TestDeleteNodeRemovesIncidentCables(t *testing.T) {
	e := New(Options{})
	a := mustAdd(t, e, NodeInput{Type: model.NodeBus, Lat: 54, Lng: 6})
	b := mustAdd(t, e, NodeInput{Type: model.NodeBus, Lat: 54, Lng: 6.1})
	c := mustAdd(t, e, NodeInput{Type: model.NodeBus, Lat: 54, Lng: 6.2})
	_, err := e.AddCable(CableInput{From: a.ID, To: b.ID})
	assert.NilError(t, err)
	kept, err := e.AddCable(CableInput{From: b.ID, To: c.ID})
	assert.NilError(t, err)

	assert.NilError(t, e.DeleteNode(a.ID))
	assert.Equal(t, len(e.Nodes()), 2)
	cables := e.Cables()
	assert.Equal(t, len(cables), 1)
	assert.Equal(t, cables[0].ID, kept.ID)

	assert.Assert(t, errors.Is(e.DeleteNode(a.ID), ErrNodeNotFound))
}

func TestAddCableValidation(t *testing.T) {
	e := New(Options{})
	a := mustAdd(t, e, NodeInput{Type: model.NodeBus, Lat: 54, Lng: 6})

	_, err := e.AddCable(CableInput{From: a.ID, To: "ghost"})
	assert.Assert(t, errors.Is(err, ErrNodeNotFound))

	_, err = e.AddCable(CableInput{From: a.ID, To: a.ID})
	assert.Assert(t, errors.Is(err, ErrInvalidCable))
}

func TestAddCableSnapsRouteEndpoints(t *testing.T) {
	e := New(Options{})
	a := mustAdd(t, e, NodeInput{Type: model.NodeBus, Lat: 54, Lng: 6})
	b := mustAdd(t, e, NodeInput{Type: model.NodeBus, Lat: 54, Lng: 6.2})

	c, err := e.AddCable(CableInput{From: a.ID, To: b.ID, Coords: []model.GeoPoint{
		{Lat: 0, Lng: 0}, {Lat: 54.1, Lng: 6.1}, {Lat: 0, Lng: 0},
	}})
	assert.NilError(t, err)
	assert.Equal(t, c.Coords[0], a.Point())
	assert.Equal(t, c.Coords[2], b.Point())
	assert.Equal(t, c.LengthKm, utils.PolylineLengthKm(c.Coords))
}

func TestAddAreaNormalisesRing(t *testing.T) {
	e := New(Options{})

	_, err := e.AddArea(AreaInput{Coords: []model.GeoPoint{{Lat: 0, Lng: 0}, {Lat: 1, Lng: 1}}})
	assert.Assert(t, errors.Is(err, ErrDegeneratePolygon))

	// 闭合点与首点重合, 应被去掉
	square := append(squareArea(5), model.GeoPoint{Lat: 54.0001, Lng: 6.5})
	a, err := e.AddArea(AreaInput{Coords: square})
	assert.NilError(t, err)
	assert.Equal(t, len(a.Coords), 4)
	assert.Assert(t, utils.SignedArea(a.Coords) > 0)
	assert.Equal(t, a.Name, "Area 1")
}

func TestIsClosingClick(t *testing.T) {
	first := model.GeoPoint{Lat: 54, Lng: 6}
	assert.Assert(t, IsClosingClick(first, model.GeoPoint{Lat: 54.0002, Lng: 5.9998}))
	assert.Assert(t, !IsClosingClick(first, model.GeoPoint{Lat: 54.01, Lng: 6}))
}

func TestPlaceTurbines(t *testing.T) {
	e := New(Options{})
	area, err := e.AddArea(AreaInput{Coords: squareArea(11)})
	assert.NilError(t, err)

	report, err := e.PlaceTurbines(area.ID, 5, 1)
	assert.NilError(t, err)
	assert.Equal(t, report.Placed, 5)
	assert.Equal(t, report.Warning, "")
	assert.Equal(t, len(e.Nodes()), 5)

	stored := e.Areas()[0]
	assert.Equal(t, stored.TurbineCount, 5)
	assert.Equal(t, stored.MinDistanceKm, 1.0)
}

func TestPlaceTurbinesUnderfillWarning(t *testing.T) {
	e := New(Options{})
	area, err := e.AddArea(AreaInput{Coords: squareArea(3)})
	assert.NilError(t, err)

	report, err := e.PlaceTurbines(area.ID, 100, 1)
	assert.NilError(t, err)
	assert.Equal(t, report.Requested, 100)
	assert.Assert(t, report.Placed < 100)
	assert.Assert(t, strings.Contains(report.Warning, fmt.Sprintf("%d / 100", report.Placed)))

	_, err = e.PlaceTurbines("missing", 1, 1)
	assert.Assert(t, errors.Is(err, ErrAreaNotFound))
	_, err = e.PlaceTurbines(area.ID, 0, 1)
	assert.Assert(t, errors.Is(err, ErrInvalidPlacement))
}

func TestPlaceTurbinesRejectsOversizedRequests(t *testing.T) {
	e := New(Options{})
	area, err := e.AddArea(AreaInput{Coords: squareArea(50)})
	assert.NilError(t, err)

	_, err = e.PlaceTurbines(area.ID, MaxPlacementCount+1, 1)
	assert.Assert(t, errors.Is(err, ErrInvalidPlacement))

	// 50 公里见方, 10 米间距: 约 2500 万个格点
	_, err = e.PlaceTurbines(area.ID, 10, 0.01)
	assert.Assert(t, errors.Is(err, ErrInvalidPlacement))
	assert.Equal(t, len(e.Nodes()), 0)

	report, err := e.PlaceTurbines(area.ID, MaxPlacementCount, 1)
	assert.NilError(t, err)
	assert.Equal(t, report.Placed, MaxPlacementCount)
}

func TestAutoRouteReplacesArrayCables(t *testing.T) {
	e := New(Options{MaxTurbinesPerString: 3})
	area, err := e.AddArea(AreaInput{Coords: squareArea(6)})
	assert.NilError(t, err)
	_, err = e.PlaceTurbines(area.ID, 7, 1)
	assert.NilError(t, err)
	oss := mustAdd(t, e, NodeInput{Type: model.NodeOffshoreSubstation, Lat: 53.99, Lng: 6.5})
	shore := mustAdd(t, e, NodeInput{Type: model.NodeOnshoreSubstation, Lat: 53.5, Lng: 6.5})
	export, err := e.AddCable(CableInput{From: oss.ID, To: shore.ID})
	assert.NilError(t, err)

	first, err := e.AutoRoute(0)
	assert.NilError(t, err)
	assert.Equal(t, len(first), 7)
	for _, c := range first {
		assert.Assert(t, c.Array)
		assert.Equal(t, c.ID, fmt.Sprintf("array_%s_%s", c.From, c.To))
		assert.Assert(t, c.LengthKm > 0)
		assert.Equal(t, c.VoltageKv, model.DefaultArrayVoltageKv)
	}

	second, err := e.AutoRoute(0)
	assert.NilError(t, err)
	assert.DeepEqual(t, first, second)

	cables := e.Cables()
	assert.Equal(t, len(cables), 8)
	assert.Equal(t, cables[0].ID, export.ID)

	// 每台风机都能追踪到升压站
	for _, n := range e.Nodes() {
		if !n.Type.IsTurbine() {
			continue
		}
		path, err := e.FeederPath(n.ID)
		assert.NilError(t, err)
		assert.Assert(t, path.Found)
		assert.Equal(t, path.SubstationID, oss.ID)
	}
}

func TestAutoRouteOnSubstationAdded(t *testing.T) {
	e := New(Options{AutoRoute: true})
	area, err := e.AddArea(AreaInput{Coords: squareArea(6)})
	assert.NilError(t, err)
	report, err := e.PlaceTurbines(area.ID, 6, 1)
	assert.NilError(t, err)
	assert.Equal(t, len(report.Cables), 0)

	mustAdd(t, e, NodeInput{Type: model.NodeOffshoreSubstation, Lat: 53.99, Lng: 6.52})
	assert.Equal(t, len(e.Cables()), 6)

	// 再布置风机会触发重新布线
	area2, err := e.AddArea(AreaInput{Coords: []model.GeoPoint{
		{Lat: 54.1, Lng: 6.5}, {Lat: 54.1, Lng: 6.53}, {Lat: 54.12, Lng: 6.53}, {Lat: 54.12, Lng: 6.5},
	}})
	assert.NilError(t, err)
	report, err = e.PlaceTurbines(area2.ID, 1, 1)
	assert.NilError(t, err)
	assert.Equal(t, len(report.Cables), 7)
	assert.Equal(t, len(e.Cables()), 7)
}

func TestLayoutAndDiagram(t *testing.T) {
	e := New(Options{AutoRoute: true})
	area, err := e.AddArea(AreaInput{Coords: squareArea(6)})
	assert.NilError(t, err)
	_, err = e.PlaceTurbines(area.ID, 8, 1)
	assert.NilError(t, err)

	// 没有升压站时退回网格布局
	assert.Equal(t, e.Layout().Kind, algo.LayoutGrid)

	mustAdd(t, e, NodeInput{Type: model.NodeOffshoreSubstation, Lat: 53.99, Lng: 6.52})
	layout := e.Layout()
	assert.Equal(t, layout.Kind, algo.LayoutWindFarm)
	assert.Equal(t, len(layout.Positions), 9)

	m := diagram.NewModel()
	assert.NilError(t, e.BuildDiagram(m))
	for _, n := range e.Nodes() {
		bus := m.Cell(diagram.BusID(n.ID))
		assert.Assert(t, bus != nil)
		assert.Equal(t, bus.X, layout.Positions[n.ID].X)
	}
	for _, c := range e.Cables() {
		assert.Assert(t, m.Cell("line_"+c.ID) != nil)
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	store := &memStore{}
	e := New(Options{Store: store})
	a := mustAdd(t, e, NodeInput{Type: model.NodeBus, Lat: 54, Lng: 6})
	b := mustAdd(t, e, NodeInput{Type: model.NodeBus, Lat: 54, Lng: 6.1})
	_, err := e.AddCable(CableInput{From: a.ID, To: b.ID})
	assert.NilError(t, err)
	assert.Equal(t, store.saves, 3)

	restored := New(Options{Store: store})
	assert.NilError(t, restored.Load())
	assert.DeepEqual(t, restored.Snapshot(), e.Snapshot())
}

func TestPersistenceErrorIsReported(t *testing.T) {
	store := &memStore{err: errors.New("disk full")}
	e := New(Options{Store: store})
	_, err := e.AddNode(NodeInput{Type: model.NodeBus})
	assert.ErrorContains(t, err, "disk full")

	assert.ErrorContains(t, e.Load(), "加载工程失败")
}

func TestImportDropsDanglingCables(t *testing.T) {
	e := New(Options{})
	err := e.Import(model.ProjectData{
		Nodes: []model.MapNode{{ID: "a", Type: model.NodeBus}, {ID: "b", Type: model.NodeBus, Lat: 1}},
		Cables: []model.MapCable{
			{ID: "ok", From: "a", To: "b", Coords: []model.GeoPoint{{}, {Lat: 1}}},
			{ID: "bad", From: "a", To: "zzz"},
		},
	})
	assert.NilError(t, err)
	cables := e.Cables()
	assert.Equal(t, len(cables), 1)
	assert.Assert(t, cables[0].LengthKm > 100)
}

func TestImportRejectsInvalidNodes(t *testing.T) {
	store := &memStore{}
	e := New(Options{Store: store})
	mustAdd(t, e, NodeInput{Type: model.NodeBus})
	saves := store.saves

	cases := []model.ProjectData{
		{Nodes: []model.MapNode{{ID: "", Type: model.NodeBus}}},
		{Nodes: []model.MapNode{{ID: "a", Type: model.NodeBus}, {ID: "a", Type: model.NodeLoad}}},
		{Nodes: []model.MapNode{{ID: "a", Type: "hydro_dam"}}},
	}
	for _, data := range cases {
		assert.Assert(t, errors.Is(e.Import(data), ErrInvalidProject))
	}
	// 失败的导入不改变当前工程
	assert.Equal(t, len(e.Nodes()), 1)
	assert.Equal(t, store.saves, saves)
}
