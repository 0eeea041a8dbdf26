package core

const ContextTraceKey = "telemetry_trace_ctx"

// ==== 型別安全 span name ====
// 專案全域建議都寫這裡，方便集中管理
type TraceSpanName string

const (
	SpanHttpRequest          TraceSpanName = "http_request"
	SpanLoggerMiddleware     TraceSpanName = "logger_middleware"
	SpanRecoveryMiddleware   TraceSpanName = "recovery_middleware"
	SpanCorsMiddleware       TraceSpanName = "cors_middleware"
	SpanResponseMiddleware   TraceSpanName = "response_middleware"
	SpanAuthMiddleware       TraceSpanName = "auth_middleware"
	SpanPermissionMiddleware TraceSpanName = "permission_middleware"
)

// 指標名稱常數
type MetricName string

const (
	MetricHttpRequestsTotal   MetricName = "requests_total"
	MetricHttpRequestDuration MetricName = "request_duration_seconds"
	MetricRequestSuccessTotal MetricName = "request_success_total"
	MetricRequestFailTotal    MetricName = "request_fail_total"
	MetricMutationTotal       MetricName = "mutation_total"
	MetricOverlapAdvisory     MetricName = "overlap_advisory_total"
	MetricImportRowsTotal     MetricName = "import_rows_total"
	MetricPermissionDecision  MetricName = "permission_decision_total"
)

// label name 常數
type MetricLabelName string

const (
	MetricLabelEndpoint MetricLabelName = "endpoint"
	MetricLabelStatus   MetricLabelName = "status"
	MetricLabelReason   MetricLabelName = "reason"
	MetricLabelResource MetricLabelName = "resource"
	MetricLabelAction   MetricLabelName = "action"
	MetricLabelSource   MetricLabelName = "source"
	MetricLabelOutcome  MetricLabelName = "outcome"
)

type LoggerRequestMeta struct {
	Method     string            `trace:"request.method"`
	Path       string            `trace:"request.path"`
	FullPath   string            `trace:"request.full_path"`
	Query      string            `trace:"request.query"`
	Body       string            `trace:"request.body"`
	Scheme     string            `trace:"http.scheme"`
	Host       string            `trace:"http.host"`
	UserAgent  string            `trace:"http.user_agent"`
	ContentLen int64             `trace:"http.request_content_length"`
	Proto      string            `trace:"http.flavor"`
	ClientIP   string            `trace:"net.peer.ip"`
	Headers    map[string]string `trace:"http.request.header"`
	Params     map[string]string `trace:"http.request.param"`
}

type TraceHttpServerMeta struct {
	ClientAddr        string `trace:"client.address"`
	HttpRequestMethod string `trace:"http.request.method"`
	HttpRoute         string `trace:"http.route"`
	HttpStatusCode    int    `trace:"http.response.status_code"`
	UrlPath           string `trace:"url.path"`
	UrlScheme         string `trace:"url.scheme"`
	UserAgent         string `trace:"user_agent.original"`
	ServerAddress     string `trace:"server.address"`
	NetworkPeerAddr   string `trace:"network.peer.address"`
	NetworkPeerPort   int    `trace:"network.peer.port"`
	NetworkProtoVer   string `trace:"network.protocol.version"`
	SpanTraceID       string `trace:"span.trace_id"`
}

type TraceAuthMeta struct {
	UserID string `trace:"auth.user_id"`
	Role   string `trace:"auth.role"`
	Where  string `trace:"auth.token_source"`
	Status string `trace:"auth.status"`
}

type TracePermissionMeta struct {
	UserID   string `trace:"perm.user_id"`
	Resource string `trace:"perm.resource"`
	Action   string `trace:"perm.action"`
	Target   string `trace:"perm.target,omitempty"`
	Source   string `trace:"perm.source"` // cache / resolved
	Allowed  bool   `trace:"perm.allowed"`
	Status   string `trace:"perm.status"`
}

type TraceResponseMeta struct {
	Path       string  `trace:"http.path"`
	Method     string  `trace:"http.method"`
	Status     int     `trace:"http.status"`
	Message    string  `trace:"response.message"`
	Code       int     `trace:"response.code"`
	DurationMs float64 `trace:"response.duration_ms"`
	Data       string  `trace:"response.data_preview"`
}

type TracePanicMeta struct {
	Path       string  `trace:"http.path"`
	Method     string  `trace:"http.method"`
	ClientIP   string  `trace:"net.peer.ip"`
	UserAgent  string  `trace:"http.user_agent"`
	DurationMs float64 `trace:"response.duration_ms"`
	Message    string  `trace:"panic.message"`
	Stack      string  `trace:"panic.stack"`
	Status     int     `trace:"http.status"`
}

type TraceListMeta struct {
	Page        int64  `trace:"list.page"`
	Size        int64  `trace:"list.size"`
	Status      string `trace:"list.status,omitempty"`
	ResultCount int    `trace:"result.count,omitempty"`
	Total       int64  `trace:"result.total,omitempty"`
}

type TraceHierarchyMeta struct {
	EntityID    string `trace:"tree.entity_id"`
	ParentID    string `trace:"tree.parent_id,omitempty"`
	Level       int    `trace:"tree.level"`
	Descendants int    `trace:"tree.descendants,omitempty"`
	Op          string `trace:"tree.op"`
}

type TraceGeoMeta struct {
	Lon       float64 `trace:"geo.lon"`
	Lat       float64 `trace:"geo.lat"`
	MaxKm     float64 `trace:"geo.max_km,omitempty"`
	Matches   int     `trace:"geo.matches"`
	Op        string  `trace:"geo.op"`
	AreaCode  string  `trace:"geo.area_code,omitempty"`
	OverlapsN int     `trace:"geo.overlaps,omitempty"`
}

type TraceImportMeta struct {
	Format   string `trace:"import.format"`
	Encoding string `trace:"import.encoding,omitempty"`
	Rows     int    `trace:"import.rows"`
	Imported int    `trace:"import.imported"`
	Failed   int    `trace:"import.failed"`
}
