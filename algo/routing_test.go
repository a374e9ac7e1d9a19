package algo

import (
	"fmt"
	"math"
	"testing"
	"windfarm-planner/model"

	"gotest.tools/v3/assert"
)

func turbine(id string, lat, lng float64) model.MapNode {
	return model.MapNode{ID: id, Type: model.NodeWindTurbine, Name: id, Lat: lat, Lng: lng}
}

func substation(id string, lat, lng float64) model.MapNode {
	return model.MapNode{ID: id, Type: model.NodeOffshoreSubstation, Name: id, Lat: lat, Lng: lng}
}

// turbineRing 在升压站周围等角度布置 n 台风机
func turbineRing(center model.MapNode, n int, radiusDeg float64) []model.MapNode {
	nodes := make([]model.MapNode, 0, n)
	for k := 0; k < n; k++ {
		angle := 2 * math.Pi * float64(k) / float64(n)
		nodes = append(nodes, turbine(
			fmt.Sprintf("wt%d", k),
			center.Lat+radiusDeg*math.Cos(angle),
			center.Lng+radiusDeg*math.Sin(angle),
		))
	}
	return nodes
}

// stringsFromCables 去掉升压站后按连通分量拆分风机串, 同时检查每台风机的度数
func stringsFromCables(t *testing.T, nodes []model.MapNode, cables []RoutedCable) [][]string {
	t.Helper()
	topo := NewTopology(nodes)
	for _, c := range cables {
		assert.Assert(t, topo.AddLink("", c.From, c.To, 0), "duplicate or dangling cable %s-%s", c.From, c.To)
	}
	for _, n := range nodes {
		if n.Type.IsTurbine() {
			assert.Assert(t, topo.Degree(n.ID) >= 1 && topo.Degree(n.ID) <= 3, "turbine %s degree %d", n.ID, topo.Degree(n.ID))
		}
	}
	return topo.Components(func(n model.MapNode) bool { return n.Type.IsTurbine() })
}

func TestRoutingEmptyInput(t *testing.T) {
	assert.Equal(t, len(ComputeOffshoreCableRouting(nil, nil, 5)), 0)

	onlyTurbines := []model.MapNode{turbine("a", 0, 0), turbine("b", 0, 0.01)}
	assert.Equal(t, len(ComputeOffshoreCableRouting(onlyTurbines, nil, 5)), 0)

	onlySubstation := []model.MapNode{substation("s", 0, 0)}
	assert.Equal(t, len(ComputeOffshoreCableRouting(onlySubstation, nil, 5)), 0)
}

func TestRoutingSixTurbinesOneSubstation(t *testing.T) {
	sub := substation("oss", 54, 6.5)
	nodes := append(turbineRing(sub, 6, 0.02), sub)

	cables := ComputeOffshoreCableRouting(nodes, nil, 5)
	strs := stringsFromCables(t, nodes, cables)

	assert.Equal(t, len(strs), 2)
	// 每串 n 台风机: n-1 段串内电缆 + 1 段主干
	assert.Equal(t, len(cables), 6)

	trunks := 0
	for _, c := range cables {
		assert.Assert(t, c.From != "oss", "substation must be the end of every string")
		if c.To == "oss" {
			trunks++
		}
		assert.Equal(t, len(c.Coords), 2)
	}
	assert.Equal(t, trunks, 2)
	for _, s := range strs {
		assert.Assert(t, len(s) <= 5)
	}
}

func TestRoutingStringsArePathsToSubstation(t *testing.T) {
	sub := substation("oss", 54, 6.5)
	outer := turbineRing(sub, 8, 0.06)
	for i := range outer {
		outer[i].ID = fmt.Sprintf("outer%d", i)
	}
	nodes := append(turbineRing(sub, 12, 0.03), sub)
	nodes = append(nodes, outer...)

	cables := ComputeOffshoreCableRouting(nodes, nil, 4)
	topo := NewTopology(nodes)
	for _, c := range cables {
		topo.AddLink(c.From+"-"+c.To, c.From, c.To, 1)
	}

	for _, n := range nodes {
		if !n.Type.IsTurbine() {
			continue
		}
		feeder := topo.FeederPath(n.ID)
		assert.Assert(t, feeder.Found, "turbine %s not connected", n.ID)
		assert.Equal(t, feeder.SubstationID, "oss")
		assert.Assert(t, len(feeder.Segments) <= 4)
	}
	strs := stringsFromCables(t, nodes, cables)
	assert.Equal(t, len(strs), 5)
	assert.Equal(t, len(cables), 20)
}

func TestRoutingDoesNotMutateInput(t *testing.T) {
	sub := substation("oss", 54, 6.5)
	nodes := append(turbineRing(sub, 7, 0.02), sub)
	snapshot := append([]model.MapNode(nil), nodes...)

	ComputeOffshoreCableRouting(nodes, nil, 3)
	assert.DeepEqual(t, nodes, snapshot)
}

func TestRoutingDeterministic(t *testing.T) {
	sub := substation("oss", 54, 6.5)
	nodes := append(turbineRing(sub, 9, 0.02), sub)
	assert.DeepEqual(t,
		ComputeOffshoreCableRouting(nodes, nil, 4),
		ComputeOffshoreCableRouting(nodes, nil, 4))
}

func TestPlanStringsNearestSubstation(t *testing.T) {
	west := substation("west", 54, 6.0)
	east := substation("east", 54, 7.0)
	nodes := []model.MapNode{
		west, east,
		turbine("w1", 54.01, 6.05), turbine("w2", 53.99, 6.1),
		turbine("e1", 54.01, 6.95), turbine("e2", 53.99, 6.9),
	}

	strs := PlanStrings(nodes, 5)
	assert.Equal(t, len(strs), 2)
	assert.Equal(t, strs[0].Substation.ID, "west")
	assert.Equal(t, strs[1].Substation.ID, "east")
	for _, s := range strs {
		for _, tb := range s.Turbines {
			assert.Equal(t, tb.ID[0], s.Substation.ID[0])
		}
	}
}

func TestPlanStringsTieGoesToFirstSubstation(t *testing.T) {
	nodes := []model.MapNode{
		substation("first", 0, -1),
		substation("second", 0, 1),
		turbine("mid", 0, 0),
	}
	strs := PlanStrings(nodes, 5)
	assert.Equal(t, len(strs), 1)
	assert.Equal(t, strs[0].Substation.ID, "first")
}

func TestPlanStringsAngularOrder(t *testing.T) {
	sub := substation("s", 0, 0)
	nodes := []model.MapNode{
		sub,
		turbine("east", 0, 0.01),  // π/2
		turbine("north", 0.01, 0), // 0
		turbine("west", 0, -0.01), // -π/2
	}
	strs := PlanStrings(nodes, 5)
	assert.Equal(t, len(strs), 1)
	ids := []string{}
	for _, tb := range strs[0].Turbines {
		ids = append(ids, tb.ID)
	}
	assert.DeepEqual(t, ids, []string{"west", "north", "east"})
}

func TestMergeOrphans(t *testing.T) {
	a, b, c := turbine("a", 0, 0), turbine("b", 0, 0.01), turbine("c", 0, 0.02)
	d, e := turbine("d", 1, 0), turbine("e", 1, 0.01)
	orphan := turbine("o", 1, 0.02)

	merged := mergeOrphans([][]model.MapNode{{a, b, c}, {d, e}, {orphan}}, 5)
	assert.Equal(t, len(merged), 2)
	assert.Equal(t, len(merged[1]), 3)
	assert.Equal(t, merged[1][2].ID, "o")

	// 所有串都已满时孤立风机保持单独成串
	full := mergeOrphans([][]model.MapNode{{a, b}, {orphan}}, 2)
	assert.Equal(t, len(full), 2)
}

func TestCountNewCrossings(t *testing.T) {
	a, b := turbine("a", 0, 0), turbine("b", 1, 1)
	c, d := turbine("c", 0, 1), turbine("d", 1, 0)
	e := turbine("e", 2, 2)

	placed := []Segment{newSegment(a, b)}
	assert.Equal(t, CountNewCrossings([]Segment{newSegment(c, d)}, placed), 1)
	// 共享端点不算交叉
	assert.Equal(t, CountNewCrossings([]Segment{newSegment(b, c)}, placed), 0)
	assert.Equal(t, CountNewCrossings([]Segment{newSegment(d, e)}, placed), 0)
}

func TestRoutingAvoidsExistingCableWhenPossible(t *testing.T) {
	sub := substation("oss", 0, 0)
	near := turbine("near", 0, 0.01)
	far := turbine("far", 0.02, 0)
	// 已有电缆横穿 near 与升压站之间的直线
	x1 := model.MapNode{ID: "x1", Type: model.NodeBus, Lat: -0.005, Lng: 0.005}
	x2 := model.MapNode{ID: "x2", Type: model.NodeBus, Lat: 0.005, Lng: 0.005}
	nodes := []model.MapNode{sub, near, far, x1, x2}

	withoutContext := ComputeOffshoreCableRouting(nodes, nil, 5)
	assert.Equal(t, len(withoutContext), 2)
	assert.Equal(t, withoutContext[1].From, "near")
	assert.Equal(t, withoutContext[1].To, "oss")

	withContext := ComputeOffshoreCableRouting(nodes, []model.CableRef{{From: "x1", To: "x2"}}, 5)
	assert.Equal(t, len(withContext), 2)
	assert.Equal(t, withContext[0].From, "near")
	assert.Equal(t, withContext[0].To, "far")
	assert.Equal(t, withContext[1].From, "far")
	assert.Equal(t, withContext[1].To, "oss")
}

func TestRoutingHugeMaxPerString(t *testing.T) {
	sub := substation("oss", 54, 6.5)
	nodes := append(turbineRing(sub, 6, 0.02), sub)

	cables := ComputeOffshoreCableRouting(nodes, nil, math.MaxInt)
	strs := stringsFromCables(t, nodes, cables)

	assert.Equal(t, len(strs), 1)
	assert.Equal(t, len(cables), 6)
}
