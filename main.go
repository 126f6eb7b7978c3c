package main

import (
	"encoding/base64"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"git.fiblab.net/sim/syncer/v3"
	easy "git.fiblab.net/utils/logrus-easy-formatter"
	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/gridsim-oss/display"
	"github.com/tsinghua-fib-lab/gridsim-oss/task"
	"github.com/tsinghua-fib-lab/gridsim-oss/utils/config"
	"github.com/tsinghua-fib-lab/gridsim-oss/utils/output"
)

var (
	// 分布式模式syncer地址，如果设置为空则激活独立部署模式
	// 独立部署：不需要syncer，不向其他服务提供受保护的RPC访问
	syncerAddr = flag.String("syncer", "", "syncer address (empty means standalone mode), e.g. http://localhost:53001")
	// 模拟任务名，用于输出文档的标记
	job = flag.String("job", "job0", "the name of the whole simulation task")
	// 本程序监听的RPC地址
	grpcAddr = flag.String("listen", ":51102", "RPC listening address")
	// 配置文件路径，与config-data都为空时使用默认配置
	configPath = flag.String("config", "", "config file path")
	// 配置文件Base64编码后的数据
	configData = flag.String("config-data", "", "config file base64 encoded data")
	// 显示端websocket监听地址，设置为空则不启动
	displayAddr  = flag.String("display", "", "websocket display listening address (empty means disabled), e.g. :8080")
	displayEvery = flag.Int("display.every", 1, "publish a display frame every N steps")

	// log
	logLevels = map[string]logrus.Level{
		"trace":    logrus.TraceLevel,
		"debug":    logrus.DebugLevel,
		"info":     logrus.InfoLevel,
		"warn":     logrus.WarnLevel,
		"error":    logrus.ErrorLevel,
		"critical": logrus.FatalLevel,
		"off":      logrus.PanicLevel,
	}
	logLevel = flag.String("log.level", "info", "日志级别（可选项：trace debug info warn error critical off）")

	log = logrus.WithField("module", "gridsim")
)

// loadConfig 读取配置：文件优先，其次Base64数据，都没有时使用默认配置
func loadConfig() (config.Config, error) {
	var file []byte
	var err error
	switch {
	case *configPath != "":
		if file, err = os.ReadFile(*configPath); err != nil {
			return config.Config{}, err
		}
	case *configData != "":
		if file, err = base64.StdEncoding.DecodeString(*configData); err != nil {
			return config.Config{}, err
		}
	default:
		log.Info("no config specified, use default config")
		c := config.Default()
		return c, c.Validate()
	}
	return config.Parse(file)
}

func main() {
	flag.Parse()
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	// log: 运行时才修改
	if level, ok := logLevels[*logLevel]; ok {
		logrus.SetLevel(level)
	} else {
		log.Panicf("log.level must be one of %v", logLevels)
	}
	// 获取配置
	c, err := loadConfig()
	if err != nil {
		log.Panicf("config load err: %v", err)
	}
	log.Infof("%+v", c)

	sidecar := syncer.NewSidecar(task.SelfName, *grpcAddr, *syncerAddr)
	t, err := task.NewContext(*job, c, sidecar, true)
	if err != nil {
		log.Panicf("failed to create task: %v", err)
	}

	if c.Output.URI != "" {
		t.SetOutput(output.New(c.Output, *job))
	}

	if *displayAddr != "" {
		hub, err := display.NewHub(t.Layout(), int32(*displayEvery))
		if err != nil {
			log.Panicf("failed to create display: %v", err)
		}
		defer hub.Close()
		t.AddFrameSink(hub)
		mux := http.NewServeMux()
		mux.Handle("/ws", hub)
		server := &http.Server{Addr: *displayAddr, Handler: mux}
		go func() {
			log.Infof("display listening on %s/ws", *displayAddr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorf("display server: %v", err)
			}
		}()
		defer server.Close()
	}

	// 收到退出信号时在当前步结束后停止
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Infof("received %v, stopping", sig)
		t.Stop()
	}()

	t.Run()
}
