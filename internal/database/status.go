package database

// ApplicationStatus 是申请记录的规范状态枚举。
// pending 为初始状态；interview_requested 之后仍可转向 accepted/rejected。
type ApplicationStatus string

const (
	StatusPending            ApplicationStatus = "pending"
	StatusAccepted           ApplicationStatus = "accepted"
	StatusRejected           ApplicationStatus = "rejected"
	StatusInterviewRequested ApplicationStatus = "interview_requested"
)

// legacyStatusLabels 是移动端历史版本发送/展示的韩文状态文案。
var legacyStatusLabels = map[string]ApplicationStatus{
	"지원 완료": StatusPending,
	"합격":    StatusAccepted,
	"불합격":   StatusRejected,
	"면접 요망": StatusInterviewRequested,
}

// ParseApplicationStatus 接受规范值或旧版韩文文案，返回规范状态。
func ParseApplicationStatus(raw string) (ApplicationStatus, bool) {
	switch ApplicationStatus(raw) {
	case StatusPending, StatusAccepted, StatusRejected, StatusInterviewRequested:
		return ApplicationStatus(raw), true
	}
	if s, ok := legacyStatusLabels[raw]; ok {
		return s, true
	}
	return "", false
}

// Valid 判断状态是否属于规范枚举。
func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected, StatusInterviewRequested:
		return true
	}
	return false
}

// Label 返回面向用户的韩文文案。
func (s ApplicationStatus) Label() string {
	switch s {
	case StatusPending:
		return "지원 완료"
	case StatusAccepted:
		return "합격"
	case StatusRejected:
		return "불합격"
	case StatusInterviewRequested:
		return "면접 요망"
	}
	return string(s)
}
