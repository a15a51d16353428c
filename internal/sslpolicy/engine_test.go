package sslpolicy

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestDetectEnginePriority(t *testing.T) {
	t.Setenv(engineEnvVar, "standalone")

	if got := DetectEngine("Gateway"); got != "gateway" {
		t.Fatalf("配置值应优先于环境变量，得到 %s", got)
	}
	if got := DetectEngine(""); got != "standalone" {
		t.Fatalf("应回退到环境变量，得到 %s", got)
	}

	t.Setenv(engineEnvVar, "")
	if got := DetectEngine(""); got != EngineDefault {
		t.Fatalf("应回退到默认引擎，得到 %s", got)
	}
}

func TestSetupDisablesPolicyForStandaloneEngine(t *testing.T) {
	logs := &bytes.Buffer{}
	logger := logrus.New()
	logger.SetOutput(logs)

	p := New(Options{})
	p.Setup("standalone", logger)

	if !p.Disabled() {
		t.Fatal("standalone 引擎应关闭策略")
	}
	if !strings.Contains(logs.String(), "standalone") {
		t.Fatalf("启动告警应包含引擎名，得到 %s", logs.String())
	}
}

func TestSetupKeepsPolicyEnabledForCapableEngine(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	p := New(Options{})
	p.Setup(EngineDefault, logger)

	if p.Disabled() {
		t.Fatal("支持 TLS 的引擎不应关闭策略")
	}
}
