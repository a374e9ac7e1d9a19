package algo

import (
	"math"
	"windfarm-planner/model"
	"windfarm-planner/utils"
)

// 预分配上限, 超出部分由 append 按需扩容
const maxPlacementPrealloc = 4096

// PlaceTurbinesInPolygon 在多边形内按规则网格布置风机
// 网格步长由 minDistKm 换算得到, 从包围盒西南角开始逐行扫描 (格心),
// 收集到 count 个点即停止。结果是确定性的, 同样的输入总是得到同样的输出。
// 区域放不下 count 个点时返回的数量会少于 count, 由调用方提示用户。
func PlaceTurbinesInPolygon(polygon []model.GeoPoint, count int, minDistKm float64) []model.GeoPoint {
	if len(polygon) < 3 || count <= 0 || minDistKm <= 0 {
		return []model.GeoPoint{}
	}

	minLat, minLng, maxLat, maxLng := utils.BoundingBox(polygon)
	centerLat := (minLat + maxLat) / 2
	dLat, dLng := utils.KmToDegreesAt(minDistKm, centerLat)

	capHint := min(count, maxPlacementPrealloc)
	if cells := GridCellCount(polygon, minDistKm); cells < float64(capHint) {
		capHint = int(cells)
	}
	points := make([]model.GeoPoint, 0, capHint)
	for row := 0; ; row++ {
		lat := minLat + (float64(row)+0.5)*dLat
		if lat > maxLat {
			break
		}
		for col := 0; ; col++ {
			lng := minLng + (float64(col)+0.5)*dLng
			if lng > maxLng {
				break
			}
			if !utils.PointInPolygon(lat, lng, polygon) {
				continue
			}
			points = append(points, model.GeoPoint{Lat: lat, Lng: lng})
			if len(points) == count {
				return points
			}
		}
	}
	return points
}

// GridCellCount 估算网格扫描要检查的格点数 (包围盒行数 x 列数)
// 调用方可据此拒绝过密的网格
func GridCellCount(polygon []model.GeoPoint, minDistKm float64) float64 {
	if len(polygon) < 3 || minDistKm <= 0 {
		return 0
	}
	minLat, minLng, maxLat, maxLng := utils.BoundingBox(polygon)
	dLat, dLng := utils.KmToDegreesAt(minDistKm, (minLat+maxLat)/2)
	rows := math.Floor((maxLat-minLat)/dLat + 0.5)
	cols := math.Floor((maxLng-minLng)/dLng + 0.5)
	return rows * cols
}
