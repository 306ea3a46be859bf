package services

import (
	"case_flow_app_go/config"
	"case_flow_app_go/services/orchestrator"
	"case_flow_app_go/services/telephony"
)

// Providers bundles the outbound adapters shared by all requests
type Providers struct {
	Analyzer Analyzer
	Mailer   Mailer
	Caller   CallPlacer
	Signer   URLSigner
}

// NewProviders builds the production adapters from configuration
func NewProviders(cfg *config.Config) *Providers {
	return &Providers{
		Analyzer: orchestrator.NewClient(cfg.OrchestratorURL, cfg.OrchestratorTimeout),
		Mailer:   NewResendMailer(cfg),
		Caller: telephony.NewClient(cfg.TelephonyAPIURL, telephony.Options{
			Timeout:            cfg.TelephonyTimeout,
			InsecureSkipVerify: cfg.TelephonyInsecureSkipVerify,
		}),
		Signer: InitializeStorage(cfg),
	}
}
