package workflow

import (
	"errors"
	"fmt"
)

// 工作流错误分类。调用方通过 errors.Is 判断类别。
var (
	ErrInvalidTransition  = errors.New("invalid transition")
	ErrForbidden          = errors.New("forbidden")
	ErrValidation         = errors.New("validation error")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Status 作业工作流状态
type Status string

// 状态常量
const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusForwarded Status = "forwarded"
)

// Valid 状态是否合法
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusApproved, StatusRejected, StatusForwarded:
		return true
	}
	return false
}

// Pending 是否处于待评审状态。submitted 与 forwarded 对评审决策等价。
func (s Status) Pending() bool {
	return s == StatusSubmitted || s == StatusForwarded
}

// Action 历史记录动作
type Action string

// 动作常量
const (
	ActionSubmitted   Action = "submitted"
	ActionApproved    Action = "approved"
	ActionRejected    Action = "rejected"
	ActionResubmitted Action = "resubmitted"
	ActionForwarded   Action = "forwarded"
)

// Op 工作流操作
type Op string

// 操作常量
const (
	OpSubmit   Op = "submit"
	OpApprove  Op = "approve"
	OpReject   Op = "reject"
	OpForward  Op = "forward"
	OpResubmit Op = "resubmit"
)

// transitions 状态迁移表，唯一的迁移事实来源。
// 不在表中的 (操作, 当前状态) 组合一律视为非法迁移。
var transitions = map[Op]map[Status]Status{
	OpSubmit: {
		StatusDraft: StatusSubmitted,
	},
	OpApprove: {
		StatusSubmitted: StatusApproved,
		StatusForwarded: StatusApproved,
	},
	OpReject: {
		StatusSubmitted: StatusRejected,
		StatusForwarded: StatusRejected,
	},
	OpForward: {
		StatusSubmitted: StatusForwarded,
		StatusForwarded: StatusForwarded,
	},
	OpResubmit: {
		StatusRejected: StatusSubmitted,
	},
}

// actions 操作写入的历史动作
var actions = map[Op]Action{
	OpSubmit:   ActionSubmitted,
	OpApprove:  ActionApproved,
	OpReject:   ActionRejected,
	OpForward:  ActionForwarded,
	OpResubmit: ActionResubmitted,
}

// Next 计算操作 op 在当前状态 from 下的目标状态。
// 重复操作（如对已通过的作业再次 approve）返回 ErrInvalidTransition，不做幂等处理。
func Next(from Status, op Op) (Status, error) {
	to, ok := transitions[op][from]
	if !ok {
		return "", fmt.Errorf("%w: cannot %s assignment in status %q", ErrInvalidTransition, op, from)
	}
	return to, nil
}

// ActionOf 返回操作写入的历史动作
func (op Op) ActionOf() Action {
	return actions[op]
}

// ConsistentAction 判断历史末条动作与当前状态是否一致。
// status 离开 draft 后该检查必须成立；resubmit 写入 resubmitted
// 但状态回到 submitted，因此 submitted 接受两种动作。
func (s Status) ConsistentAction(a Action) bool {
	switch s {
	case StatusSubmitted:
		return a == ActionSubmitted || a == ActionResubmitted
	case StatusApproved:
		return a == ActionApproved
	case StatusRejected:
		return a == ActionRejected
	case StatusForwarded:
		return a == ActionForwarded
	}
	return false
}
