package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/tls-gate/tls-gate/internal/config"
	"github.com/tls-gate/tls-gate/internal/logging"
	"github.com/tls-gate/tls-gate/internal/server"
	"github.com/tls-gate/tls-gate/internal/server/routes"
	"github.com/tls-gate/tls-gate/internal/sslpolicy"
	"github.com/tls-gate/tls-gate/internal/version"
)

// cliOptions 汇总 CLI 标志解析后的结果，便于在测试中注入。
type cliOptions struct {
	configPath  string
	checkOnly   bool
	showVersion bool
}

var (
	stdOut io.Writer = os.Stdout
	stdErr io.Writer = os.Stderr
)

func main() {
	opts, err := parseCLIFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(stdErr, err.Error())
		os.Exit(2)
	}
	os.Exit(run(opts))
}

// run 根据解析到的 CLI 选项执行业务流程，并返回退出码，方便测试。
func run(opts cliOptions) int {
	if opts.showVersion {
		printVersion()
		return 0
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stdErr, "加载配置失败: %v\n", err)
		return 1
	}

	logger, err := logging.InitLogger(cfg.Global)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化日志失败: %v\n", err)
		return 1
	}

	engine := sslpolicy.DetectEngine(cfg.Global.Engine)

	if opts.checkOnly {
		fields := logging.BaseFields("check_config", opts.configPath)
		fields["routes"] = len(cfg.Routes)
		fields["secure_routes"] = cfg.SecureRouteCount()
		fields["engine"] = engine
		fields["result"] = "ok"
		logger.WithFields(fields).Info("配置校验通过")
		return 0
	}

	policy := sslpolicy.New(sslpolicy.Options{
		HTTPSHost:   cfg.Policy.HTTPSHost,
		HTTPHost:    cfg.Policy.HTTPHost,
		RemainInSSL: cfg.Policy.RemainInSSL,
	})
	// 一次性启动钩子：引擎无法终结 TLS 时关闭整个机制。
	policy.Setup(engine, logger)

	enforcer, err := sslpolicy.NewEnforcer(policy, logger)
	if err != nil {
		fmt.Fprintf(stdErr, "构建策略执行器失败: %v\n", err)
		return 1
	}

	table, err := server.NewRouteTable(cfg)
	if err != nil {
		fmt.Fprintf(stdErr, "构建路由表失败: %v\n", err)
		return 1
	}

	fields := logging.BaseFields("startup", opts.configPath)
	fields["routes"] = len(cfg.Routes)
	fields["listen_port"] = cfg.Global.ListenPort
	fields["version"] = version.Full()
	for key, value := range logging.PolicyFields(engine, policy.Disabled(), policy.RemainInSSL(), cfg.SecureRouteCount()) {
		fields[key] = value
	}
	logger.WithFields(fields).Info("配置加载完成")

	if err := startHTTPServer(cfg, policy, enforcer, table, engine, logger); err != nil {
		fmt.Fprintf(stdErr, "HTTP 服务启动失败: %v\n", err)
		return 1
	}
	return 0
}

// parseCLIFlags 解析 CLI 参数，并结合环境变量计算最终的配置路径。
func parseCLIFlags(args []string) (cliOptions, error) {
	fs := flag.NewFlagSet("tls-gate", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		configFlag string
		checkOnly  bool
		showVer    bool
	)

	fs.StringVar(&configFlag, "config", "", "配置文件路径（默认 ./config.toml，可被 TLSGATE_CONFIG 覆盖）")
	fs.BoolVar(&checkOnly, "check-config", false, "仅校验配置后退出")
	fs.BoolVar(&showVer, "version", false, "显示版本信息")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, fmt.Errorf("解析参数失败: %w", err)
	}

	path := os.Getenv("TLSGATE_CONFIG")
	if configFlag != "" {
		path = configFlag
	}
	if path == "" {
		path = "config.toml"
	}

	return cliOptions{
		configPath:  path,
		checkOnly:   checkOnly,
		showVersion: showVer,
	}, nil
}

func startHTTPServer(cfg *config.Config, policy *sslpolicy.Policy, enforcer *sslpolicy.Enforcer, table *server.RouteTable, engine string, logger *logrus.Logger) error {
	port := cfg.Global.ListenPort
	app, err := server.NewApp(server.AppOptions{
		Logger:     logger,
		Routes:     table,
		Enforcer:   enforcer,
		Handler:    newPageHandler(),
		ListenPort: port,
	})
	if err != nil {
		return err
	}
	routes.RegisterPolicyRoutes(app, policy, table, engine)

	// 收到中断信号时按 ShutdownTimeout 优雅退出，避免截断在途请求。
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		if err := app.ShutdownWithTimeout(cfg.Global.ShutdownTimeout.DurationValue()); err != nil {
			logger.WithFields(logrus.Fields{
				"action": "shutdown",
			}).Warn(err.Error())
		}
	}()

	logger.WithFields(logrus.Fields{
		"action": "listen",
		"port":   port,
	}).Info("Fiber 服务启动")

	return app.Listen(fmt.Sprintf(":%d", port))
}

// newPageHandler 渲染默认页面；真实部署中由业务 handler 替换，
// 这里返回路由与安全状态方便人工验证策略行为。
func newPageHandler() server.AppHandler {
	return server.AppHandlerFunc(func(c fiber.Ctx, route *server.Route) error {
		payload := fiber.Map{
			"path":       c.Path(),
			"request_id": server.RequestID(c),
		}
		if route != nil {
			payload["route"] = route.Config.Name
			payload["require_ssl"] = route.RequireSSL
		}
		return c.JSON(payload)
	})
}
