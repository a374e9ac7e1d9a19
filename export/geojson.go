// Package export 把工程数据导出为 GeoJSON
package export

import (
	"windfarm-planner/model"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

func toOrb(p model.GeoPoint) orb.Point {
	return orb.Point{p.Lng, p.Lat}
}

// FeatureCollection 节点导出为 Point, 电缆为 LineString, 区域为 Polygon
func FeatureCollection(nodes []model.MapNode, cables []model.MapCable, areas []model.MapArea) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for _, a := range areas {
		if len(a.Coords) < 3 {
			continue
		}
		ring := make(orb.Ring, 0, len(a.Coords)+1)
		for _, p := range a.Coords {
			ring = append(ring, toOrb(p))
		}
		ring = append(ring, ring[0])

		f := geojson.NewFeature(orb.Polygon{ring})
		f.ID = a.ID
		f.Properties["kind"] = "area"
		f.Properties["name"] = a.Name
		f.Properties["turbine_count"] = a.TurbineCount
		f.Properties["min_distance_km"] = a.MinDistanceKm
		fc.Append(f)
	}

	for _, c := range cables {
		line := make(orb.LineString, 0, len(c.Coords))
		for _, p := range c.Coords {
			line = append(line, toOrb(p))
		}

		f := geojson.NewFeature(line)
		f.ID = c.ID
		f.Properties["kind"] = "cable"
		f.Properties["from"] = c.From
		f.Properties["to"] = c.To
		f.Properties["length_km"] = c.LengthKm
		f.Properties["voltage_kv"] = c.VoltageKv
		f.Properties["array"] = c.Array
		fc.Append(f)
	}

	for _, n := range nodes {
		f := geojson.NewFeature(toOrb(n.Point()))
		f.ID = n.ID
		f.Properties["kind"] = "node"
		f.Properties["type"] = string(n.Type)
		f.Properties["name"] = n.Name
		f.Properties["vn_kv"] = n.VnKv
		f.Properties["p_mw"] = n.PMw
		fc.Append(f)
	}

	return fc
}
