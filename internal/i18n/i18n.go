package i18n

import "strings"

// DefaultLocale is the studio's primary audience locale.
const DefaultLocale = "vi"

// Supported normalizes a free-form locale tag to one of the supported
// locales, defaulting to English for anything that is not Vietnamese.
func Supported(locale string) string {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(locale)), "vi") {
		return "vi"
	}
	return "en"
}

// T looks up a message key for a locale, falling back to English and finally
// to the key itself so a missing entry never blanks the UI.
func T(locale, key string) string {
	if msg, ok := messages[Supported(locale)][key]; ok {
		return msg
	}
	if msg, ok := messages["en"][key]; ok {
		return msg
	}
	return key
}

// Translator binds T to one locale, matching the translate collaborator shape
// the orchestrator expects.
func Translator(locale string) func(key string) string {
	locale = Supported(locale)
	return func(key string) string { return T(locale, key) }
}

var messages = map[string]map[string]string{
	"en": {
		"loading.preparing":       "Preparing your request...",
		"loading.generating":      "Generating, this can take a little while...",
		"loading.video.submitted": "Video job submitted, waiting for the studio to start...",
		"loading.video.polling":   "Rendering your video, checking progress...",
		"loading.video.fetching":  "Almost there, fetching the finished video...",

		"error.transformation_required": "Please choose a transformation first.",
		"error.prompt_required":         "Please describe what you want to create.",
		"error.primary_required":        "Please upload a photo first.",
		"error.both_images_required":    "This effect needs both photos. Please upload the second one.",
		"error.gallery_required":        "Please upload at least one photo.",
		"error.description_required":    "Please describe the scene for your lookbook.",
		"error.fields_required":         "Please fill in every field.",
		"error.too_many_images":         "Too many photos for this effect. Please remove a few.",
		"error.no_candidates":           "Generate a set of options before picking one.",
		"error.unknown_candidate":       "That option is not part of the current set.",
		"error.candidate_required":      "Pick one of the generated options first.",
		"error.candidate_unreadable":    "The selected option could not be read. Please generate again.",
		"error.step_one_failed":         "The line-art step did not produce an image, so the final composite was not attempted.",
		"error.video_store_failed":      "The video was generated but could not be saved. Please try again.",
		"error.video_unavailable":       "Video generation is not available on this deployment.",

		"error.invalid_request": "The request could not be understood.",
		"error.passcode":        "That access code is not correct.",
		"error.not_found":       "Not found.",

		"transform.custom_edit":        "Custom Edit",
		"transform.anime_style":        "Anime Style",
		"transform.figurine":           "Desk Figurine",
		"transform.restore_photo":      "Restore Old Photo",
		"transform.outfit_swap":        "Outfit Swap",
		"transform.pose_copy":          "Pose Copy",
		"transform.lookbook":           "Fashion Lookbook",
		"transform.group_photo":        "Group Photo",
		"transform.payment_qr_chibi":   "Payment QR Chibi",
		"transform.line_art_composite": "Line Art Composite",
		"transform.trend_dance":        "Trend Dance Video",
		"transform.text_to_image":      "Text to Image",
	},
	"vi": {
		"loading.preparing":       "Đang chuẩn bị yêu cầu của bạn...",
		"loading.generating":      "Đang tạo ảnh, vui lòng chờ trong giây lát...",
		"loading.video.submitted": "Đã gửi yêu cầu video, đang chờ hệ thống bắt đầu...",
		"loading.video.polling":   "Đang dựng video của bạn, vui lòng chờ...",
		"loading.video.fetching":  "Sắp xong rồi, đang tải video hoàn chỉnh...",

		"error.transformation_required": "Vui lòng chọn một hiệu ứng trước.",
		"error.prompt_required":         "Vui lòng mô tả điều bạn muốn tạo.",
		"error.primary_required":        "Vui lòng tải ảnh lên trước.",
		"error.both_images_required":    "Hiệu ứng này cần cả hai ảnh. Vui lòng tải ảnh thứ hai lên.",
		"error.gallery_required":        "Vui lòng tải lên ít nhất một ảnh.",
		"error.description_required":    "Vui lòng mô tả bối cảnh cho bộ lookbook.",
		"error.fields_required":         "Vui lòng điền đầy đủ các trường.",
		"error.too_many_images":         "Quá nhiều ảnh cho hiệu ứng này. Vui lòng bỏ bớt.",
		"error.no_candidates":           "Hãy tạo các phương án trước khi chọn.",
		"error.unknown_candidate":       "Phương án này không nằm trong bộ hiện tại.",
		"error.candidate_required":      "Hãy chọn một trong các phương án đã tạo.",
		"error.candidate_unreadable":    "Không đọc được phương án đã chọn. Vui lòng tạo lại.",
		"error.step_one_failed":         "Bước vẽ nét không tạo ra ảnh nên bước ghép cuối không được thực hiện.",
		"error.video_store_failed":      "Video đã được tạo nhưng không lưu được. Vui lòng thử lại.",
		"error.video_unavailable":       "Tính năng tạo video không khả dụng trên hệ thống này.",

		"error.invalid_request": "Không hiểu được yêu cầu.",
		"error.passcode":        "Mã truy cập không đúng.",
		"error.not_found":       "Không tìm thấy.",

		"transform.custom_edit":        "Chỉnh sửa tùy ý",
		"transform.anime_style":        "Phong cách Anime",
		"transform.figurine":           "Mô hình để bàn",
		"transform.restore_photo":      "Phục chế ảnh cũ",
		"transform.outfit_swap":        "Đổi trang phục",
		"transform.pose_copy":          "Sao chép dáng",
		"transform.lookbook":           "Lookbook thời trang",
		"transform.group_photo":        "Ảnh nhóm",
		"transform.payment_qr_chibi":   "Chibi QR thanh toán",
		"transform.line_art_composite": "Ghép tranh nét",
		"transform.trend_dance":        "Video nhảy trend",
		"transform.text_to_image":      "Tạo ảnh từ chữ",
	},
}
