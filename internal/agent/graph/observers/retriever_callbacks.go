package observers

import (
	"context"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/retriever"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"

	logx "github.com/bridgetext/coach-server/pkg/logger"
)

func newRetrieverHandler() *callbackHelper.RetrieverCallbackHandler {
	return &callbackHelper.RetrieverCallbackHandler{
		OnStart: func(ctx context.Context, info *einocb.RunInfo, input *retriever.CallbackInput) context.Context {
			if input != nil {
				logx.Debug().Str("node", info.Name).Int("top_k", input.TopK).Msg("retrieval start")
			}
			return ctx
		},
		OnEnd: func(ctx context.Context, info *einocb.RunInfo, output *retriever.CallbackOutput) context.Context {
			if output != nil {
				logx.Debug().Str("node", info.Name).Int("docs", len(output.Docs)).Msg("retrieval end")
			}
			return ctx
		},
		OnError: func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			logx.Warn().Err(err).Str("node", info.Name).Msg("retrieval failed")
			return ctx
		},
	}
}
