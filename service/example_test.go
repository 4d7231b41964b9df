package service_test

import (
	"context"
	"fmt"
	"os"

	"bootstrap/logging"
	"bootstrap/message"
	"bootstrap/service"
)

func ExampleService_SendPrompt() {
	svc, err := service.New(service.Config{
		APIKey: os.Getenv("GPT_API_KEY"),
		Logger: logging.New(os.Stderr),
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer svc.Close()

	completion, err := svc.SendPrompt(context.Background(), message.PromptRequest{
		message.System("You are a helpful assistant."),
		message.User("Write a haiku about recursion in programming."),
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Println(completion.Message.Content)
}
