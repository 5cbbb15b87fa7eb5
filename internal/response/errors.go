package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// Authentication
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"

	// Authorization
	ErrPermissionDenied  ErrCode = "PERMISSION_DENIED"
	ErrStudentAccessOnly ErrCode = "STUDENT_ACCESS_ONLY"
	ErrAdminAccessOnly   ErrCode = "ADMIN_ACCESS_ONLY"
	ErrActionForbidden   ErrCode = "ACTION_FORBIDDEN"

	// Input
	ErrValidation ErrCode = "VALIDATION_ERROR"
	ErrInvalidID  ErrCode = "INVALID_ID"

	// Resources
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrConflict         ErrCode = "CONFLICT"
	ErrDependencyExists ErrCode = "DEPENDENCY_EXISTS"

	// Course registration
	ErrCourseFull        ErrCode = "COURSE_FULL"
	ErrAlreadyRegistered ErrCode = "ALREADY_REGISTERED"
	ErrNotRegistered     ErrCode = "NOT_REGISTERED"

	// Certificate uploads
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"

	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"
	ErrInternal          ErrCode = "INTERNAL_ERROR"
)

const unknownErrorMessage = "Terjadi kesalahan yang tidak terduga."

// messages holds the user-facing (Indonesian) text for every code.
var messages = map[ErrCode]string{
	ErrInvalidCredentials: "NIM/email atau kata sandi salah.",
	ErrSessionInvalidated: "Sesi Anda telah berakhir. Silakan login kembali.",
	ErrTokenRequired:      "Token autentikasi diperlukan.",
	ErrTokenInvalid:       "Token autentikasi tidak valid.",

	ErrPermissionDenied:  "Izin ditolak.",
	ErrStudentAccessOnly: "Sumber daya ini terbatas untuk mahasiswa.",
	ErrAdminAccessOnly:   "Sumber daya ini terbatas untuk administrator.",
	ErrActionForbidden:   "Tindakan ini tidak diizinkan.",

	ErrValidation: "Validasi gagal. Silakan periksa masukan Anda.",
	ErrInvalidID:  "Format ID tidak valid.",

	ErrNotFound:         "Sumber daya tidak ditemukan.",
	ErrConflict:         "Sumber daya sudah ada.",
	ErrDependencyExists: "Sumber daya masih digunakan oleh data lain.",

	ErrCourseFull:        "Kuota mata kuliah sudah penuh.",
	ErrAlreadyRegistered: "Anda sudah terdaftar pada mata kuliah ini.",
	ErrNotRegistered:     "Anda belum terdaftar pada mata kuliah ini.",

	ErrFileRequired:    "Unggah file diperlukan.",
	ErrUnsupportedFile: "Jenis file tidak didukung.",
	ErrFileTooLarge:    "Ukuran file melebihi batas.",

	ErrRateLimitExceeded: "Terlalu banyak permintaan. Silakan coba lagi nanti.",
	ErrInternal:          "Terjadi kesalahan server internal.",
}

// GetMessage returns the user-facing message for code.
func GetMessage(code ErrCode) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return unknownErrorMessage
}

// Known reports whether code has a registered message.
func (code ErrCode) Known() bool {
	_, ok := messages[code]
	return ok
}
