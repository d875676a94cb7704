package chartapi

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"stockview/internal/chart"
	"stockview/internal/logger"
	"stockview/internal/market"
	"stockview/internal/render/echarts"
	"stockview/internal/render/snapshot"
	"stockview/internal/watchlist"
)

// Router 暴露图表流水线的 HTTP 接口：一次性的模型/视图查询、
// 有状态的图表会话（视口操作、刷新），以及自选列表的维护。
type Router struct {
	source   market.Source
	watch    *watchlist.Watchlist
	periods  []int
	lookback int

	capturer *snapshot.Capturer
	selfBase string

	mu       sync.Mutex
	sessions map[string]*chart.Session
}

type Options struct {
	Source          market.Source
	Watchlist       *watchlist.Watchlist
	Periods         []int
	DefaultLookback int
	// SnapshotBase 非空时启用 PNG 截图接口，值为本服务可自访问的地址。
	SnapshotBase string
}

func NewRouter(opts Options) *Router {
	lookback := opts.DefaultLookback
	if lookback <= 0 {
		lookback = 120
	}
	r := &Router{
		source:   opts.Source,
		watch:    opts.Watchlist,
		periods:  opts.Periods,
		lookback: lookback,
		selfBase: opts.SnapshotBase,
		sessions: make(map[string]*chart.Session),
	}
	if opts.SnapshotBase != "" {
		r.capturer = snapshot.New(20 * time.Second)
	}
	return r
}

// Register 挂载全部路由。
func (r *Router) Register(engine *gin.Engine) {
	engine.GET("/", r.handleHome)
	engine.GET("/view/:code", r.handleView)

	api := engine.Group("/api")
	api.GET("/chart/:code", r.handleChartModel)
	api.GET("/chart/:code/tooltip", r.handleTooltip)
	api.GET("/chart/:code/snapshot", r.handleSnapshot)
	api.GET("/chart/:code/export.csv", r.handleExport)

	api.POST("/session", r.handleSessionOpen)
	api.GET("/session/:id", r.handleSessionGet)
	api.GET("/session/:id/model", r.handleSessionModel)
	api.GET("/session/:id/tooltip", r.handleSessionTooltip)
	api.POST("/session/:id/viewport", r.handleSessionViewport)
	api.POST("/session/:id/refresh", r.handleSessionRefresh)
	api.DELETE("/session/:id", r.handleSessionClose)

	api.GET("/watchlist", r.handleWatchlist)
	api.POST("/watchlist", r.handleWatchlistAdd)
	api.DELETE("/watchlist/:code", r.handleWatchlistRemove)
}

func (r *Router) lookbackOf(c *gin.Context) int {
	days, err := strconv.Atoi(c.DefaultQuery("days", strconv.Itoa(r.lookback)))
	if err != nil || days <= 0 {
		return r.lookback
	}
	return days
}

// periodsOf 解析 periods=5,10,20 形式的均线周期覆盖，缺省用配置值。
func (r *Router) periodsOf(c *gin.Context) []int {
	raw := c.Query("periods")
	if raw == "" {
		return r.periods
	}
	var out []int
	for _, part := range strings.Split(raw, ",") {
		p, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || p <= 0 {
			return r.periods
		}
		out = append(out, p)
	}
	return out
}

// buildModel 一次性拉取并构建模型，不保留会话状态。
func (r *Router) buildModel(c *gin.Context, code string) (*chart.Model, bool) {
	s := chart.NewSession(r.source, r.periodsOf(c))
	defer s.Close()
	model, err := s.Load(c.Request.Context(), code, r.lookbackOf(c))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return nil, false
	}
	return model, true
}

func (r *Router) handleHome(c *gin.Context) {
	if r.watch == nil {
		c.JSON(http.StatusOK, gin.H{"stocks": []watchlist.Entry{}})
		return
	}
	list, err := r.watch.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stocks": list})
}

func (r *Router) handleView(c *gin.Context) {
	model, ok := r.buildModel(c, c.Param("code"))
	if !ok {
		return
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	vp := chart.DefaultViewport(model.RowCount())
	if err := echarts.RenderPage(c.Writer, model, vp); err != nil {
		logger.Errorf("[http] 渲染 %s 图表页失败: %v", model.Code, err)
	}
}

func (r *Router) handleChartModel(c *gin.Context) {
	model, ok := r.buildModel(c, c.Param("code"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, modelResponse(model))
}

func (r *Router) handleTooltip(c *gin.Context) {
	model, ok := r.buildModel(c, c.Param("code"))
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Query("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index 非法"})
		return
	}
	summary, ok := chart.Format(model, index)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "index 超出范围"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

func (r *Router) handleExport(c *gin.Context) {
	model, ok := r.buildModel(c, c.Param("code"))
	if !ok {
		return
	}
	csv := chart.BuildCSV(model, chart.CSVOptions{
		PricePrecision: chart.PrecisionAuto,
		WithFlow:       c.Query("flow") == "1",
	})
	c.Header("Content-Disposition", `attachment; filename="`+model.Code+`.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(csv))
}

func (r *Router) handleSnapshot(c *gin.Context) {
	if r.capturer == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "截图功能未启用"})
		return
	}
	url := r.selfBase + "/view/" + c.Param("code")
	png, err := r.capturer.CapturePNG(c.Request.Context(), url)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (r *Router) handleSessionOpen(c *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required"`
		Days int    `json:"days"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Days <= 0 {
		req.Days = r.lookback
	}
	s := chart.NewSession(r.source, r.periods)
	model, err := s.Load(c.Request.Context(), req.Code, req.Days)
	if err != nil {
		s.Close()
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	c.JSON(http.StatusCreated, gin.H{
		"session_id": s.ID,
		"model":      modelMeta(model),
		"viewport":   s.Viewport(),
	})
}

func (r *Router) session(c *gin.Context) *chart.Session {
	r.mu.Lock()
	s := r.sessions[c.Param("id")]
	r.mu.Unlock()
	if s == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "会话不存在"})
	}
	return s
}

func (r *Router) handleSessionGet(c *gin.Context) {
	s := r.session(c)
	if s == nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id": s.ID,
		"model":      modelMeta(s.Model()),
		"viewport":   s.Viewport(),
	})
}

func (r *Router) handleSessionModel(c *gin.Context) {
	s := r.session(c)
	if s == nil {
		return
	}
	model := s.Model()
	if model == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "会话尚未加载数据"})
		return
	}
	c.JSON(http.StatusOK, modelResponse(model))
}

func (r *Router) handleSessionTooltip(c *gin.Context) {
	s := r.session(c)
	if s == nil {
		return
	}
	model := s.Model()
	if model == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "会话尚未加载数据"})
		return
	}
	index, err := strconv.Atoi(c.Query("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index 非法"})
		return
	}
	summary, ok := chart.Format(model, index)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "index 超出范围"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

func (r *Router) handleSessionViewport(c *gin.Context) {
	s := r.session(c)
	if s == nil {
		return
	}
	var update chart.ViewportUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	vp, err := s.ApplyViewport(update)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"viewport": vp})
}

func (r *Router) handleSessionRefresh(c *gin.Context) {
	s := r.session(c)
	if s == nil {
		return
	}
	model, err := s.Refresh(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"model":    modelMeta(model),
		"viewport": s.Viewport(),
	})
}

func (r *Router) handleSessionClose(c *gin.Context) {
	id := c.Param("id")
	r.mu.Lock()
	s := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if s == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "会话不存在"})
		return
	}
	s.Close()
	c.JSON(http.StatusOK, gin.H{"closed": id})
}

func (r *Router) handleWatchlist(c *gin.Context) {
	r.handleHome(c)
}

func (r *Router) handleWatchlistAdd(c *gin.Context) {
	if r.watch == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "自选列表未启用"})
		return
	}
	var entry watchlist.Entry
	if err := c.ShouldBindJSON(&entry); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := r.watch.Add(entry); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"added": entry.Code})
}

func (r *Router) handleWatchlistRemove(c *gin.Context) {
	if r.watch == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "自选列表未启用"})
		return
	}
	code := c.Param("code")
	if err := r.watch.Remove(code); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": code})
}

// modelMeta 是会话接口返回的模型概要。
func modelMeta(m *chart.Model) gin.H {
	if m == nil {
		return gin.H{"rows": 0}
	}
	return gin.H{
		"code":             m.Code,
		"rows":             m.RowCount(),
		"periods":          m.Periods,
		"has_capital_flow": m.HasCapitalFlow,
		"panes":            m.Panes(),
	}
}

type rowResponse struct {
	Bar      market.DailyBar     `json:"bar"`
	Flow     market.FlowRecord   `json:"flow"`
	MA       map[string]*float64 `json:"ma"`
	CandleUp bool                `json:"candle_up"`
	VolumeUp bool                `json:"volume_up"`
}

// modelResponse 把模型投影为 JSON 友好结构：均线空洞输出 null 而非 NaN。
func modelResponse(m *chart.Model) gin.H {
	rows := make([]rowResponse, len(m.Rows))
	for i, row := range m.Rows {
		mas := make(map[string]*float64, len(m.Periods))
		for _, p := range m.Periods {
			name := "MA" + strconv.Itoa(p)
			if v, ok := row.MA[p]; ok && !math.IsNaN(v) {
				value := v
				mas[name] = &value
			} else {
				mas[name] = nil
			}
		}
		rows[i] = rowResponse{
			Bar:      row.Bar,
			Flow:     row.Flow,
			MA:       mas,
			CandleUp: m.CandleUpAt(i),
			VolumeUp: m.VolumeUpAt(i),
		}
	}
	return gin.H{
		"code":             m.Code,
		"periods":          m.Periods,
		"has_capital_flow": m.HasCapitalFlow,
		"panes":            m.Panes(),
		"rows":             rows,
	}
}
