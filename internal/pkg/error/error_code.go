package error

const (
	// 0 ~ 999: 成功類別
	SUCCESS = 0 // 200 OK

	// 40000 ~ 49999: 用戶請求錯誤 (400 系列)
	BAD_REQUEST_BODY    = 40000 // 400 - 無效的請求體
	BAD_REQUEST_PARAMS  = 40001 // 400 - 無效的請求參數
	BAD_REQUEST_HEADERS = 40002 // 400 - 無效的請求標頭
	CIRCULAR_REFERENCE  = 40010 // 400 - 階層循環（祖先指向子孫）
	INVALID_PARENT      = 40011 // 400 - 上層節點無效
	INVALID_GEOMETRY    = 40020 // 400 - 多邊形/座標格式錯誤
	UNSUPPORTED_FORMAT  = 40021 // 400 - 不支援的匯入/匯出格式

	// 40100 ~ 40399: 驗證與權限錯誤 (401 403 系列)
	UNAUTHORIZED  = 40100 // 401 - 未授權
	TOKEN_EXPIRED = 40101 // 401 - Token 已過期
	INVALID_TOKEN = 40102 // 401 - Token 無效
	FORBIDDEN     = 40301 // 403 - 禁止訪問

	// 40400 ~ 40499: 資源錯誤 (404 系列)
	NOT_FOUND        = 40400 // 404 - 資源未找到
	PARENT_NOT_FOUND = 40401 // 404 - 上層節點未找到

	// 40900 ~ 40999: 資源衝突 (409 系列)
	CONFLICT        = 40900 // 409 - 資源狀態衝突
	DUPLICATE_CODE  = 40901 // 409 - 唯一代碼重複
	DEPENDENCY_HELD = 40902 // 409 - 尚有下層或關聯資料，禁止刪除

	// 50000 ~ 50199: 伺服器內部錯誤 (500 系列)
	INTERNAL_ERROR      = 50000 // 500 - 內部錯誤
	DATABASE_ERROR      = 50001 // 500 - 資料庫錯誤
	SERVICE_UNAVAILABLE = 50002 // 503 - 服務暫停 (維護模式)
)
