// SPDX-License-Identifier: Apache-2.0
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"gasguard/internal/config"
	"gasguard/internal/lsp"
	"gasguard/internal/scanner"
)

const lsName = "gasguard"

var log = commonlog.GetLogger("gasguard.lsp.server")

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(config.Find(""))
	if err == nil {
		err = cfg.ApplyEnv()
	}
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		commonlog.Configure(1, nil)
		log.Errorf("invalid configuration: %s", err.Error())
		os.Exit(1)
	}

	commonlog.Configure(max(cfg.Verbosity, 1), nil)

	s := scanner.New(scanner.WithWorkers(cfg.Workers), scanner.WithExclude(cfg.Exclude...))
	if err := cfg.Apply(s.Engines()...); err != nil {
		log.Errorf("%s", err.Error())
		os.Exit(1)
	}

	gasguardHandler := lsp.NewHandler(s)
	handler := protocol.Handler{
		Initialize:            gasguardHandler.Initialize,
		Initialized:           gasguardHandler.Initialized,
		Shutdown:              gasguardHandler.Shutdown,
		SetTrace:              gasguardHandler.SetTrace,
		TextDocumentDidOpen:   gasguardHandler.TextDocumentDidOpen,
		TextDocumentDidChange: gasguardHandler.TextDocumentDidChange,
		TextDocumentDidSave:   gasguardHandler.TextDocumentDidSave,
		TextDocumentDidClose:  gasguardHandler.TextDocumentDidClose,
	}

	srv := server.NewServer(&handler, lsName, false)

	log.Info("starting GasGuard language server")
	if err := srv.RunStdio(); err != nil {
		log.Errorf("language server stopped: %s", err.Error())
		os.Exit(1)
	}
}
