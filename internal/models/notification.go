package models

import "time"

// NotificationLevel classifies a transient user notification.
type NotificationLevel string

const (
	NotificationSuccess NotificationLevel = "success"
	NotificationError   NotificationLevel = "error"
	NotificationInfo    NotificationLevel = "info"
)

// Notification is a short-lived message surfaced to the operator.
type Notification struct {
	Level     NotificationLevel `json:"level"`
	Message   string            `json:"message"`
	CreatedAt time.Time         `json:"createdAt"`
}

// User facing notification texts.
const (
	MsgDeleteSuccess  = "Laporan berhasil dihapus"
	MsgDeleteFailed   = "Gagal menghapus laporan"
	MsgCreateSuccess  = "Laporan berhasil disubmit!"
	MsgUpdateSuccess  = "Laporan berhasil diperbarui!"
	MsgSubmitFailed   = "Terjadi kesalahan saat mengirim laporan."
	MsgLoadFailed     = "Gagal memuat laporan."
	MsgListFailed     = "Gagal memuat data laporan."
	MsgProofRequired  = "Harap unggah bukti penyaluran!"
	MsgDeleteCanceled = "Penghapusan dibatalkan"
	MsgConfirmDelete  = "Apakah Anda yakin ingin menghapus laporan ini?"
)

// NewNotification stamps a notification with the current time.
func NewNotification(level NotificationLevel, message string) Notification {
	return Notification{Level: level, Message: message, CreatedAt: time.Now().UTC()}
}

// Success builds a success notification.
func Success(message string) Notification {
	return NewNotification(NotificationSuccess, message)
}

// Failure builds an error notification.
func Failure(message string) Notification {
	return NewNotification(NotificationError, message)
}
