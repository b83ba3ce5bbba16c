package pipeline

// EventKind 事件类型
type EventKind int

const (
	// EventLog 一行状态信息
	EventLog EventKind = iota + 1
	// EventStart 开始处理一个文件
	EventStart
	// EventFragments 当前文件的片段翻译进度
	EventFragments
	// EventProgress 一个文件处理结束
	EventProgress
	// EventComplete 全部结束，携带汇总
	EventComplete
)

// Event 驱动发给前端的单向通知
type Event struct {
	Kind EventKind
	File string
	Err  error

	Message string

	// EventFragments
	Done  int
	Count int

	// EventStart / EventProgress / EventComplete
	Index     int
	Processed int
	Total     int
	Succeeded int
	Report    *Report
}
