// Package tools exposes the memory API as LLM-callable tools. Definitions()
// returns provider-neutral schemas; Anthropic() and OpenAI() convert them to
// the respective SDK parameter types, and Execute dispatches a model's tool
// call back onto the memories and search services.
package tools
