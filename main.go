package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"knowflow-agent-backend/config"
	"knowflow-agent-backend/controller"
	"knowflow-agent-backend/dao"
	"knowflow-agent-backend/router"
	"knowflow-agent-backend/service/chat"
	"knowflow-agent-backend/service/mcpclient"
	"knowflow-agent-backend/service/registry"
	"knowflow-agent-backend/service/search"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	flag.Parse()

	if err := config.Load(*configPath); err != nil {
		slog.Error("Failed to load config", "err", err)
		os.Exit(1)
	}

	store, err := dao.Open(config.Cfg.DB.DSN)
	if err != nil {
		slog.Error("Failed to init database", "err", err)
		os.Exit(1)
	}

	llm, err := chat.NewLLM()
	if err != nil {
		slog.Error("Failed to create llm client", "err", err)
		os.Exit(1)
	}

	pipeline := chat.NewPipeline(store, llm, search.NewClient(), mcpclient.Invoker{})
	chatCtl := controller.NewChatController(store, pipeline)
	mcpCtl := controller.NewMCPController(store, registry.NewSynchronizer(store))

	r := router.Register(chatCtl, mcpCtl)

	addr := fmt.Sprintf("%s:%s", config.Cfg.Server.Host, config.Cfg.Server.Port)
	slog.Info("Starting server", "addr", addr)
	if err := r.Run(addr); err != nil {
		slog.Error("Server exited", "err", err)
		os.Exit(1)
	}
}
