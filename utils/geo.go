package utils

import (
	"math"
	"windfarm-planner/model"
)

// EarthRadiusKm 地球平均半径 (公里)
const EarthRadiusKm = 6371.0

// KmPerDegreeLat 每度纬度对应的公里数 (局部平面近似)
const KmPerDegreeLat = 111.0

// DegreesToRadians 角度转弧度
func DegreesToRadians(d float64) float64 {
	return d * math.Pi / 180.0
}

// HaversineDistanceKm Haversine 公式 (两点间球面距离, 公里)
func HaversineDistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := DegreesToRadians(lat1)
	phi2 := DegreesToRadians(lat2)
	dLat := DegreesToRadians(lat2 - lat1)
	dLon := DegreesToRadians(lon2 - lon1)

	// a = sin²(Δlat/2) + cos(lat1) * cos(lat2) * sin²(Δlon/2)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(phi1)*math.Cos(phi2)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	// c = 2 * atan2(√a, √(1-a))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// HaversineDistance 两个 GeoPoint 之间的球面距离 (公里)
func HaversineDistance(p1, p2 model.GeoPoint) float64 {
	return HaversineDistanceKm(p1.Lat, p1.Lng, p2.Lat, p2.Lng)
}

// PolylineLengthKm 折线总长度, 少于两个点时为 0
func PolylineLengthKm(points []model.GeoPoint) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += HaversineDistance(points[i-1], points[i])
	}
	return total
}

// KmToDegreesAt 在给定纬度附近把公里换算成纬度/经度步长
// 使用 111 km/° 的平面近似, 风电场尺度下误差可以接受
func KmToDegreesAt(km, latitude float64) (dLat, dLng float64) {
	dLat = km / KmPerDegreeLat
	cosLat := math.Cos(DegreesToRadians(latitude))
	if cosLat < 1e-6 {
		cosLat = 1e-6
	}
	dLng = km / (KmPerDegreeLat * cosLat)
	return dLat, dLng
}

// PointInPolygon 射线法 (奇偶规则) 判断点是否在多边形内
// 多边形隐式闭合; 顶点少于 3 个时返回 false
// 注意: 点恰好落在边或顶点上时结果不确定
func PointInPolygon(lat, lng float64, polygon []model.GeoPoint) bool {
	n := len(polygon)
	if n < 3 {
		return false
	}

	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := polygon[i].Lng, polygon[i].Lat
		xj, yj := polygon[j].Lng, polygon[j].Lat
		if (yi > lat) != (yj > lat) &&
			lng < (xj-xi)*(lat-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// orientation 叉积符号: >0 逆时针, <0 顺时针, 0 共线
func orientation(p, q, r model.GeoPoint) float64 {
	return (q.Lng-p.Lng)*(r.Lat-p.Lat) - (q.Lat-p.Lat)*(r.Lng-p.Lng)
}

// SegmentsIntersect 判断线段 a1a2 与 b1b2 是否相交
// 四个方向值全为 0 (共线) 时用包围盒是否重叠判断
// 仅用于路由评分, 不追求 CAD 级精度
func SegmentsIntersect(a1, a2, b1, b2 model.GeoPoint) bool {
	d1 := orientation(b1, b2, a1)
	d2 := orientation(b1, b2, a2)
	d3 := orientation(a1, a2, b1)
	d4 := orientation(a1, a2, b2)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	if d1 == 0 && d2 == 0 && d3 == 0 && d4 == 0 {
		return math.Max(a1.Lng, a2.Lng) >= math.Min(b1.Lng, b2.Lng) &&
			math.Max(b1.Lng, b2.Lng) >= math.Min(a1.Lng, a2.Lng) &&
			math.Max(a1.Lat, a2.Lat) >= math.Min(b1.Lat, b2.Lat) &&
			math.Max(b1.Lat, b2.Lat) >= math.Min(a1.Lat, a2.Lat)
	}

	return false
}

// SignedArea 多边形有向面积 (度², 经度为 x 轴), 逆时针为正
func SignedArea(polygon []model.GeoPoint) float64 {
	area := 0.0
	n := len(polygon)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += polygon[i].Lng*polygon[j].Lat - polygon[j].Lng*polygon[i].Lat
	}
	return area / 2
}

// NormalizeRing 去掉与首点重合的闭合点, 并统一为逆时针方向
// 返回新切片, 不修改输入
func NormalizeRing(polygon []model.GeoPoint, closeTolDeg float64) []model.GeoPoint {
	ring := make([]model.GeoPoint, 0, len(polygon))
	for _, p := range polygon {
		if len(ring) > 0 && samePoint(ring[len(ring)-1], p, 0) {
			continue
		}
		ring = append(ring, p)
	}
	if len(ring) > 1 && samePoint(ring[0], ring[len(ring)-1], closeTolDeg) {
		ring = ring[:len(ring)-1]
	}
	if SignedArea(ring) < 0 {
		for i, j := 0, len(ring)-1; i < j; i, j = i+1, j-1 {
			ring[i], ring[j] = ring[j], ring[i]
		}
	}
	return ring
}

func samePoint(a, b model.GeoPoint, tol float64) bool {
	return math.Abs(a.Lat-b.Lat) <= tol && math.Abs(a.Lng-b.Lng) <= tol
}

// BoundingBox 返回多边形的包围盒
func BoundingBox(polygon []model.GeoPoint) (minLat, minLng, maxLat, maxLng float64) {
	if len(polygon) == 0 {
		return 0, 0, 0, 0
	}
	minLat, maxLat = polygon[0].Lat, polygon[0].Lat
	minLng, maxLng = polygon[0].Lng, polygon[0].Lng
	for _, p := range polygon[1:] {
		minLat = math.Min(minLat, p.Lat)
		maxLat = math.Max(maxLat, p.Lat)
		minLng = math.Min(minLng, p.Lng)
		maxLng = math.Max(maxLng, p.Lng)
	}
	return minLat, minLng, maxLat, maxLng
}
