package observers

import (
	einocb "github.com/cloudwego/eino/callbacks"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"
)

// NewCompletionCallbacks aggregates the prompt and chat-model observers into
// one callbacks.Handler for a completion run. modelName selects the pricing
// used for the usage-cost log line.
func NewCompletionCallbacks(modelName string) einocb.Handler {
	return callbackHelper.NewHandlerHelper().
		ChatModel(newModelHandler(modelName)).
		Prompt(newPromptHandler()).
		Handler()
}
