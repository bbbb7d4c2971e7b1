package main

import (
	"fmt"
	"strings"

	catalogbiz "github.com/lk2023060901/model-catalog/internal/catalog/biz"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// modelFlags 新增/编辑共用的字段参数，保持与表单相同的文本输入
type modelFlags struct {
	input catalogbiz.ModelInput
}

func (f *modelFlags) bind(flags *pflag.FlagSet) {
	flags.StringVar(&f.input.Name, "name", "", "model name")
	flags.StringVar(&f.input.Provider, "provider", "", "provider, e.g. OpenAI")
	flags.StringVar(&f.input.ContextLength, "context-length", "", "context window in tokens")
	flags.StringVar(&f.input.BenchmarkScore, "score", "", "benchmark score, 0-100")
	flags.StringVar(&f.input.Capabilities, "capabilities", "", `capabilities as a JSON object, e.g. '{"vision": true}'`)
}

// apply 只覆盖命令行显式给出的字段
func (f *modelFlags) apply(flags *pflag.FlagSet, base *catalogbiz.ModelInput) *catalogbiz.ModelInput {
	merged := *base
	set := map[string]*string{
		"name":           &merged.Name,
		"provider":       &merged.Provider,
		"context-length": &merged.ContextLength,
		"score":          &merged.BenchmarkScore,
		"capabilities":   &merged.Capabilities,
	}
	values := map[string]string{
		"name":           f.input.Name,
		"provider":       f.input.Provider,
		"context-length": f.input.ContextLength,
		"score":          f.input.BenchmarkScore,
		"capabilities":   f.input.Capabilities,
	}
	for name, dst := range set {
		if flags.Changed(name) {
			*dst = values[name]
		}
	}
	return &merged
}

func (a *app) modelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "models",
		Aliases: []string{"model"},
		Short:   "List and edit model records",
	}
	cmd.AddCommand(
		a.modelsListCmd(),
		a.modelsShowCmd(),
		a.modelsAddCmd(),
		a.modelsUpdateCmd(),
		a.modelsDeleteCmd(),
	)
	return cmd
}

func (a *app) modelsListCmd() *cobra.Command {
	var byName bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List models, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			token, err := a.token(ctx)
			if err != nil {
				return err
			}

			var models []*catalogbiz.Model
			if byName {
				models, err = a.modelUC.ListForComparison(ctx, token)
			} else {
				models, err = a.modelUC.ListForDashboard(ctx, token)
			}
			if err != nil {
				return a.expired(ctx, err)
			}

			out := cmd.OutOrStdout()
			if len(models) == 0 {
				fmt.Fprintln(out, "No models yet. Add one with 'modelctl models add'.")
				return nil
			}
			fmt.Fprintln(out, renderModels(models))
			return nil
		},
	}

	cmd.Flags().BoolVar(&byName, "by-name", false, "sort by name instead of creation time")
	return cmd
}

func (a *app) modelsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			token, err := a.token(ctx)
			if err != nil {
				return err
			}
			model, err := a.modelUC.Get(ctx, token, args[0])
			if err != nil {
				return a.expired(ctx, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderModel(model))
			return nil
		},
	}
}

func (a *app) modelsAddCmd() *cobra.Command {
	f := &modelFlags{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a model",
		Example: `  modelctl models add --name "GPT-4" --provider OpenAI --context-length 128000 --score 86.4 \
    --capabilities '{"vision": true, "function_calling": true}'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			token, err := a.token(ctx)
			if err != nil {
				return err
			}
			model, err := a.modelUC.Create(ctx, token, &f.input)
			if err != nil {
				return a.expired(ctx, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Model added (id %s)\n", model.ID)
			return nil
		},
	}

	f.bind(cmd.Flags())
	return cmd
}

func (a *app) modelsUpdateCmd() *cobra.Command {
	f := &modelFlags{}

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a model; omitted fields keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			token, err := a.token(ctx)
			if err != nil {
				return err
			}

			current, err := a.modelUC.Get(ctx, token, args[0])
			if err != nil {
				return a.expired(ctx, err)
			}
			input := f.apply(cmd.Flags(), catalogbiz.InputFromModel(current))
			if err := a.modelUC.Update(ctx, token, args[0], input); err != nil {
				return a.expired(ctx, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Model updated")
			return nil
		},
	}

	f.bind(cmd.Flags())
	return cmd
}

func (a *app) modelsDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a model",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			token, err := a.token(ctx)
			if err != nil {
				return err
			}

			if !yes {
				answer, err := a.prompt(out, "Delete this model? [y/N]", "")
				if err != nil {
					return err
				}
				if !strings.EqualFold(strings.TrimSpace(answer), "y") {
					fmt.Fprintln(out, "Cancelled")
					return nil
				}
			}

			if err := a.modelUC.Delete(ctx, token, args[0]); err != nil {
				return a.expired(ctx, err)
			}
			fmt.Fprintln(out, "Model deleted")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func (a *app) compareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <model1-id> <model2-id>",
		Short: "Compare two models side by side",
		Args:  cobra.RangeArgs(0, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ids := make([]string, 2)
			copy(ids, args)

			// 选择校验先于登录检查，与页面提示一致
			if err := catalogbiz.CheckSelection(ids[0], ids[1]); err != nil {
				return cliError(err)
			}

			token, err := a.token(ctx)
			if err != nil {
				return err
			}
			cmp, err := a.modelUC.Compare(ctx, token, ids[0], ids[1])
			if err != nil {
				return a.expired(ctx, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderComparison(cmp))
			return nil
		},
	}
}
