package chat

const EventDone = "done"

// Event 流式响应中的单个事件帧，三种形态之一：
// 增量回答内容、可恢复的错误描述、或携带会话ID的终止标记。
// 每次请求有且仅有一个终止事件，且总是最后一个。
type Event struct {
	Content   string `json:"content,omitempty"`
	Error     string `json:"error,omitempty"`
	Event     string `json:"event,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

func ContentEvent(text string) Event {
	return Event{Content: text}
}

func ErrorEvent(msg string) Event {
	return Event{Error: msg}
}

func DoneEvent(sessionID string) Event {
	return Event{Event: EventDone, SessionID: sessionID}
}
