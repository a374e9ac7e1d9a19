package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"windfarm-planner/algo"
	"windfarm-planner/diagram"
	"windfarm-planner/editor"
	"windfarm-planner/export"
	"windfarm-planner/model"

	"github.com/gin-gonic/gin"
)

// Editor 全局编辑器对象 (应在 main 中初始化)
var Editor *editor.Editor

// errorStatus 把编辑器错误映射为 HTTP 状态码
func errorStatus(err error) int {
	switch {
	case errors.Is(err, editor.ErrNodeNotFound),
		errors.Is(err, editor.ErrCableNotFound),
		errors.Is(err, editor.ErrAreaNotFound):
		return http.StatusNotFound
	case errors.Is(err, editor.ErrInvalidNodeType),
		errors.Is(err, editor.ErrInvalidCable),
		errors.Is(err, editor.ErrDegeneratePolygon),
		errors.Is(err, editor.ErrInvalidPlacement),
		errors.Is(err, editor.ErrInvalidProject):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(errorStatus(err), gin.H{"error": err.Error()})
}

// editorReady 检查编辑器是否已初始化
func editorReady(c *gin.Context) bool {
	if Editor == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "工程未加载"})
		return false
	}
	return true
}

// GetProject 获取整个工程 (节点、电缆、区域)
func GetProject(c *gin.Context) {
	if !editorReady(c) {
		return
	}
	c.JSON(http.StatusOK, Editor.Snapshot())
}

// ImportProject 用请求中的工程整体替换当前工程
func ImportProject(c *gin.Context) {
	if !editorReady(c) {
		return
	}
	var req model.ProjectData
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数错误: " + err.Error()})
		return
	}

	if err := Editor.Import(req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, Editor.Snapshot())
}

// GetNodes 获取所有节点, 可按 type 过滤
func GetNodes(c *gin.Context) {
	if !editorReady(c) {
		return
	}

	filter := model.NodeType(c.Query("type"))
	nodes := make([]model.MapNode, 0)
	for _, n := range Editor.Nodes() {
		if filter == "" || n.Type == filter {
			nodes = append(nodes, n)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(nodes),
		"nodes": nodes,
	})
}

// GetNodeByID 根据 ID 获取节点
func GetNodeByID(c *gin.Context) {
	if !editorReady(c) {
		return
	}
	node, err := Editor.Node(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, node)
}

// NearestNode 查找离给定坐标最近的节点, 可按 type 过滤
func NearestNode(c *gin.Context) {
	if !editorReady(c) {
		return
	}
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat 和 lng 必须是数字"})
		return
	}

	filter := model.NodeType(c.Query("type"))
	topo := algo.NewTopology(Editor.Nodes())
	nearest := topo.FindNearestNode(lat, lng, func(n model.MapNode) bool {
		return filter == "" || n.Type == filter
	})
	if nearest == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "没有符合条件的节点"})
		return
	}
	c.JSON(http.StatusOK, nearest)
}

// CreateNode 新增节点
func CreateNode(c *gin.Context) {
	if !editorReady(c) {
		return
	}
	var req editor.NodeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数错误: " + err.Error()})
		return
	}

	node, err := Editor.AddNode(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, node)
}

// MoveRequest 移动节点请求
type MoveRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// MoveNode 移动节点, 相连电缆随之更新
func MoveNode(c *gin.Context) {
	if !editorReady(c) {
		return
	}
	var req MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数错误: " + err.Error()})
		return
	}

	node, err := Editor.MoveNode(c.Param("id"), req.Lat, req.Lng)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, node)
}

// DeleteNode 删除节点及其相连电缆
func DeleteNode(c *gin.Context) {
	if !editorReady(c) {
		return
	}
	if err := Editor.DeleteNode(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetFeederPath 追踪节点到最近升压站的电缆路径
func GetFeederPath(c *gin.Context) {
	if !editorReady(c) {
		return
	}
	result, err := Editor.FeederPath(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CreateCable 手动新增电缆
func CreateCable(c *gin.Context) {
	if !editorReady(c) {
		return
	}
	var req editor.CableInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数错误: " + err.Error()})
		return
	}

	cable, err := Editor.AddCable(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cable)
}

// DeleteCable 删除电缆
func DeleteCable(c *gin.Context) {
	if !editorReady(c) {
		return
	}
	if err := Editor.DeleteCable(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateArea 新增风机布置区域
func CreateArea(c *gin.Context) {
	if !editorReady(c) {
		return
	}
	var req editor.AreaInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数错误: " + err.Error()})
		return
	}

	area, err := Editor.AddArea(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, area)
}

// DeleteArea 删除区域
func DeleteArea(c *gin.Context) {
	if !editorReady(c) {
		return
	}
	if err := Editor.DeleteArea(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PlacementRequest 布置风机请求
type PlacementRequest struct {
	Count         int     `json:"count" binding:"required,min=1,max=2000"`
	MinDistanceKm float64 `json:"min_distance_km" binding:"required,gt=0"`
}

// PlaceTurbines 在区域内布置风机
func PlaceTurbines(c *gin.Context) {
	if !editorReady(c) {
		return
	}
	var req PlacementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数错误: " + err.Error()})
		return
	}

	report, err := Editor.PlaceTurbines(c.Param("id"), req.Count, req.MinDistanceKm)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// RoutingRequest 自动布线请求
type RoutingRequest struct {
	MaxTurbinesPerString int `json:"max_turbines_per_string" binding:"min=0,max=100"`
}

// AutoRoute 重新计算阵列电缆
func AutoRoute(c *gin.Context) {
	if !editorReady(c) {
		return
	}
	// 请求体可以为空, 此时使用默认串长
	var req RoutingRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数错误: " + err.Error()})
		return
	}

	cables, err := Editor.AutoRoute(req.MaxTurbinesPerString)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(cables),
		"cables": cables,
	})
}

// GetLayout 获取示意图布局
func GetLayout(c *gin.Context) {
	if !editorReady(c) {
		return
	}
	c.JSON(http.StatusOK, Editor.Layout())
}

// GetDiagram 生成电气示意图
func GetDiagram(c *gin.Context) {
	if !editorReady(c) {
		return
	}
	m := diagram.NewModel()
	if err := Editor.BuildDiagram(m); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// ExportGeoJSON 导出 GeoJSON
func ExportGeoJSON(c *gin.Context) {
	if !editorReady(c) {
		return
	}
	p := Editor.Snapshot()
	c.JSON(http.StatusOK, export.FeatureCollection(p.Nodes, p.Cables, p.Areas))
}
