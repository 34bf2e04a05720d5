package service

import (
	"time"

	"go.uber.org/zap"

	"viralcut/config"
	"viralcut/internal/types"
	"viralcut/log"
	"viralcut/pkg/account"
	"viralcut/pkg/openai"
	"viralcut/pkg/oss"
)

type Service struct {
	Analyzer  types.ViralAnalyzer
	Completer types.ChatCompleter
	Accounts  types.AccountChecker
	Mirror    types.ArtifactMirror
	Submitter types.JobSubmitter
}

func NewService() *Service {
	llm := config.Conf.Llm

	primary := openai.NewClient(llm.BaseUrl, llm.ApiKey, config.Conf.App.Proxy, llm.PrimaryModel, llm.MaxTokens)
	fallback := openai.NewClient(llm.BaseUrl, llm.ApiKey, config.Conf.App.Proxy, llm.FallbackModel, llm.MaxTokens)
	log.GetLogger().Info("分析模型链 analysis model chain",
		zap.String("primary", llm.PrimaryModel),
		zap.String("fallback", llm.FallbackModel))

	analyzer := &FallbackAnalyzer{
		Primary:        NewModelAnalyzer(primary, llm.PrimaryModel),
		Fallback:       NewModelAnalyzer(fallback, llm.FallbackModel),
		AttemptTimeout: time.Duration(llm.AnalysisTimeout) * time.Second,
		RetryBackoff:   time.Duration(llm.RetryBackoff) * time.Second,
	}

	var accounts types.AccountChecker
	if config.Conf.Account.BaseUrl != "" {
		accounts = account.NewClient(
			config.Conf.Account.BaseUrl,
			config.Conf.Account.ApiKey,
			time.Duration(config.Conf.Account.RequestTimeout)*time.Second,
		)
	} else {
		accounts = account.StaticChecker{
			Premium:            config.Conf.Account.StaticPremium,
			FreeMaxDuration:    config.Conf.Pipeline.FreeMaxDuration,
			PremiumMaxDuration: config.Conf.Pipeline.PremiumMaxDuration,
		}
	}

	svc := &Service{
		Analyzer:  analyzer,
		Completer: primary,
		Accounts:  accounts,
	}

	if config.Conf.Oss.Bucket != "" {
		svc.Mirror = oss.NewClient(
			config.Conf.Oss.Region,
			config.Conf.Oss.AccessKeyId,
			config.Conf.Oss.AccessKeySecret,
			config.Conf.Oss.Bucket,
		)
		log.GetLogger().Info("OSS 镜像已启用 artifact mirror enabled", zap.String("bucket", config.Conf.Oss.Bucket))
	}

	return svc
}
