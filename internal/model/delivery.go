// Package model はドメインモデルを定義する。
package model

import "time"

// DeliveryLog は1回の送信試行の記録を表す。
type DeliveryLog struct {
	ID             string
	OrganizationID string
	PersonID       string
	Channel        DeliveryChannel
	Status         DeliveryStatus
	SentAt         *time.Time
	CreatedAt      time.Time
}

// DeliveryChannel は送信チャネルを表す。
type DeliveryChannel string

const (
	// DeliveryChannelEmail はメールによる送信。
	DeliveryChannelEmail DeliveryChannel = "email"
	// DeliveryChannelSMS はSMSによる送信。
	DeliveryChannelSMS DeliveryChannel = "sms"
)

// DeliveryStatus は送信試行の状態を表す。
type DeliveryStatus string

const (
	// DeliveryStatusQueued は送信待ちの状態。
	DeliveryStatusQueued DeliveryStatus = "QUEUED"
	// DeliveryStatusSent は送信済みの状態。
	DeliveryStatusSent DeliveryStatus = "SENT"
	// DeliveryStatusDelivered は到達確認済みの状態。
	DeliveryStatusDelivered DeliveryStatus = "DELIVERED"
	// DeliveryStatusFailed は送信失敗の状態。
	DeliveryStatusFailed DeliveryStatus = "FAILED"
)

// SchedulerRun は外部cronトリガーによる実行の重複排除レコードを表す。
// (organization_id, run_date) のユニーク制約で同日2回目の実行を防ぐ。
type SchedulerRun struct {
	ID             string
	OrganizationID string
	RunDate        time.Time // 日付のみ
	CreatedAt      time.Time
}
