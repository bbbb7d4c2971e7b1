package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	authbiz "github.com/lk2023060901/model-catalog/internal/auth/biz"
	"github.com/lk2023060901/model-catalog/internal/auth/store"
	catalogbiz "github.com/lk2023060901/model-catalog/internal/catalog/biz"
	catalogdata "github.com/lk2023060901/model-catalog/internal/catalog/data"
	"github.com/lk2023060901/model-catalog/internal/conf"
	apperrors "github.com/lk2023060901/model-catalog/internal/pkg/errors"
	"github.com/lk2023060901/model-catalog/internal/pkg/logger"
	"github.com/lk2023060901/model-catalog/internal/supabase"
	"github.com/spf13/cobra"
)

// sessionID the CLI keeps a single login per session directory.
const sessionID = "default"

type app struct {
	configFile string
	verbose    bool

	log     *logger.Logger
	config  *conf.Config
	authUC  *authbiz.AuthUseCase
	modelUC *catalogbiz.ModelUseCase
	stdin   *bufio.Reader
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "modelctl",
		Short:         "Manage the AI model catalog from the terminal",
		Long:          "modelctl logs in against the catalog's Supabase project and lists, edits and compares model records.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&a.configFile, "config", "c", "configs/config.yaml", "config file path (optional)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging on stderr")

	root.AddCommand(
		a.loginCmd(),
		a.registerCmd(),
		a.logoutCmd(),
		a.statusCmd(),
		a.modelsCmd(),
		a.compareCmd(),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	log, err := logger.CLI(a.verbose)
	if err != nil {
		return err
	}
	a.log = log

	config, err := conf.LoadOptional(a.configFile)
	if err != nil {
		return err
	}
	a.config = config

	var (
		client     *supabase.Client
		authClient authbiz.AuthClient
	)
	if err := config.Supabase.Validate(); err == nil {
		client, err = supabase.New(&supabase.Config{
			URL:     config.Supabase.URL,
			AnonKey: config.Supabase.AnonKey,
			Timeout: config.Supabase.Timeout,
		}, log)
		if err != nil {
			return err
		}
		authClient = client
	}

	a.authUC = authbiz.NewAuthUseCase(authClient, store.NewFileStore(config.CLI.SessionDir), log)
	a.modelUC = catalogbiz.NewModelUseCase(catalogdata.NewModelRepo(client), log)
	a.stdin = bufio.NewReader(cmd.InOrStdin())
	return nil
}

// token 返回当前登录的访问令牌
func (a *app) token(ctx context.Context) (string, error) {
	session, err := a.authUC.Current(ctx, sessionID)
	if err != nil {
		return "", cliError(err)
	}
	return session.AccessToken(), nil
}

// expired 服务端拒绝令牌时删除本地会话
func (a *app) expired(ctx context.Context, err error) error {
	if apperrors.Is(err, apperrors.ErrAuthSessionExpired) {
		_ = a.authUC.DropSession(ctx, sessionID)
	}
	return cliError(err)
}

// prompt 读取一行输入，flag 已给出时直接返回
func (a *app) prompt(out io.Writer, label, value string) (string, error) {
	if value != "" {
		return value, nil
	}
	fmt.Fprintf(out, "%s: ", label)
	line, err := a.stdin.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// cliError 展示给用户的错误信息
func cliError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code == apperrors.ErrInternalServer {
		return err
	}
	return errors.New(appErr.UserMessage())
}
