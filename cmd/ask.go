package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bayen-ai/bayen-go/pkg/apierror"
	"github.com/bayen-ai/bayen-go/pkg/message"
	"github.com/bayen-ai/bayen-go/pkg/models"
	"github.com/bayen-ai/bayen-go/pkg/role"
	"github.com/bayen-ai/bayen-go/pkg/wrapper"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the legal assistant a question",
	Args:  cobra.ExactArgs(1),
	RunE:  runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)

	flags := askCmd.Flags()
	flags.StringP("model", "m", models.DefaultModel, "model (bayen-pro/bayen-lite)")
	flags.String("system", "", "optional system prompt")
	flags.Int("max-tokens", 0, "cap on response tokens (0 = server default)")
	flags.Bool("plain", false, "request a plain markdown answer instead of structured output")
	flags.Bool("think", false, "print the model's reasoning trace when present")
	flags.String("api-key", "", "API key (recommend using env: BAYEN_API_KEY)")
	flags.String("base-url", "", "endpoint root override")
	flags.Duration("timeout", 0, "per-attempt deadline")
	flags.Int("retries", 0, "attempt cap")

	_ = viper.BindPFlag("api_key", flags.Lookup("api-key"))
	_ = viper.BindPFlag("base_url", flags.Lookup("base-url"))
	_ = viper.BindPFlag("timeout", flags.Lookup("timeout"))
	_ = viper.BindPFlag("max_retries", flags.Lookup("retries"))
}

func runAsk(cmd *cobra.Command, args []string) error {
	apiKey := viper.GetString("api_key")
	if apiKey == "" {
		return fmt.Errorf("no API key: set BAYEN_API_KEY or --api-key")
	}

	logger := log.Logger
	w, err := wrapper.NewStatelessWrapper(apiKey, wrapper.Config{
		BaseURL:     viper.GetString("base_url"),
		Timeout:     viper.GetDuration("timeout"),
		MaxRetries:  viper.GetInt("max_retries"),
		BackoffBase: viper.GetDuration("backoff_base"),
		Logger:      &logger,
	})
	if err != nil {
		return err
	}

	// the API requires the conversation to open with a user turn, so the
	// system prompt rides along after it
	messages := []message.Message{{Role: role.User, Content: args[0]}}
	if system, _ := cmd.Flags().GetString("system"); system != "" {
		messages = append(messages, message.Message{Role: role.System, Content: system})
	}

	maxTokens, _ := cmd.Flags().GetInt("max-tokens")
	model, _ := cmd.Flags().GetString("model")
	request := wrapper.ChatRequest{
		Model:     model,
		Messages:  messages,
		MaxTokens: maxTokens,
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if plain, _ := cmd.Flags().GetBool("plain"); plain {
		answer, err := w.ChatPlain(ctx, request)
		if err != nil {
			return describeErr(err)
		}
		fmt.Println(answer)
		return nil
	}

	resp, err := w.Chat(ctx, request)
	if err != nil {
		return describeErr(err)
	}

	if showThink, _ := cmd.Flags().GetBool("think"); showThink && resp.Think != nil {
		fmt.Printf("--- reasoning ---\n%s\n-----------------\n\n", *resp.Think)
	}
	fmt.Println(resp.Message)
	if len(resp.Citations) > 0 {
		fmt.Println("\nSources:")
		for i, c := range resp.Citations {
			fmt.Printf("  [%d] %s\n", i+1, c)
		}
	}
	log.Debug().
		Str("id", resp.Metadata.ID).
		Str("model", resp.Metadata.Model).
		Str("title", resp.Metadata.Title).
		Msg("chat completed")
	return nil
}

func describeErr(err error) error {
	var schemaErr *apierror.SchemaError
	if errors.As(err, &schemaErr) {
		return fmt.Errorf("invalid request: %s: %s", schemaErr.Field, schemaErr.Reason)
	}
	var apiErr *apierror.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("chat failed: %w", apiErr)
	}
	return err
}
