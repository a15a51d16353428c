package logging

import "github.com/sirupsen/logrus"

// BaseFields 构建 action + 配置路径等基础字段，便于不同入口复用。
func BaseFields(action, configPath string) logrus.Fields {
	return logrus.Fields{
		"action":     action,
		"configPath": configPath,
	}
}

// PolicyFields 提供策略状态字段，供启动与诊断日志复用。
func PolicyFields(engine string, disabled, remainInSSL bool, secureRoutes int) logrus.Fields {
	return logrus.Fields{
		"engine":        engine,
		"disabled":      disabled,
		"remain_in_ssl": remainInSSL,
		"secure_routes": secureRoutes,
	}
}
