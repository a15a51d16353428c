package sslpolicy

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// EngineDefault 是未显式配置时假定的执行引擎标识。
const EngineDefault = "fiber"

// engineEnvVar 允许部署环境覆盖引擎标识（配置文件优先级更高）。
const engineEnvVar = "TLSGATE_ENGINE"

// tlsIncapableEngines 列出无法终结 TLS 的内嵌引擎：在这些引擎下强制
// 跳转 HTTPS 只会产生循环或连接错误，因此整个机制会被关闭。
var tlsIncapableEngines = map[string]struct{}{
	"standalone": {},
	"dev":        {},
}

// DetectEngine 返回最终生效的引擎标识：配置值 > TLSGATE_ENGINE 环境变量 > 默认值。
// 启动时查询一次，之后不再变化。
func DetectEngine(configured string) string {
	if v := strings.ToLower(strings.TrimSpace(configured)); v != "" {
		return v
	}
	if v := strings.ToLower(strings.TrimSpace(os.Getenv(engineEnvVar))); v != "" {
		return v
	}
	return EngineDefault
}

// Setup 是一次性的启动钩子：当引擎无法终结 TLS 时关闭策略并告警一次。
// 这样 RequireSSL 调用在开发环境可以原样保留，只记录将要发生的跳转。
func (p *Policy) Setup(engine string, logger *logrus.Logger) {
	if _, incapable := tlsIncapableEngines[engine]; !incapable {
		return
	}

	p.disable()
	logger.WithFields(logrus.Fields{
		"action": "ssl_policy_setup",
		"engine": engine,
	}).Warn("engine cannot terminate TLS, ssl policy disabled")
}
