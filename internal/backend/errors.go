package backend

import "errors"

var (
	// ErrMissingAPIKey indicates a backend was selected but its API key
	// (or endpoint) is absent from the configuration.
	ErrMissingAPIKey = errors.New("API key is not configured")

	// ErrEmptyResponse indicates the model replied with no usable text.
	ErrEmptyResponse = errors.New("model returned an empty response")

	// ErrAllBackendsFailed is returned when every configured backend has
	// been tried without success. Its message is safe to show to users.
	ErrAllBackendsFailed = errors.New("콘텐츠 생성에 실패했습니다. AI 백엔드 설정을 확인해주세요")
)
