package openai

import "strings"

// ResolveKey 按优先级解析 API Key：用户覆盖优先，其次构建配置的默认值
func ResolveKey(override, buildDefault string) string {
	if key := strings.TrimSpace(override); key != "" {
		return key
	}
	return strings.TrimSpace(buildDefault)
}

// IsLikelyValidKey 粗略校验用户输入的 Key：sk- 开头且长度 ≥ 20
func IsLikelyValidKey(key string) bool {
	trimmed := strings.TrimSpace(key)
	return strings.HasPrefix(trimmed, "sk-") && len(trimmed) >= 20
}
