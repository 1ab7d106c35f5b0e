package commands

import (
	"context"
	"fmt"
	"os"

	"docvault/pkg/app"
	"docvault/pkg/config"
	"docvault/pkg/meta"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	// 全局应用实例，供子命令使用
	DV *app.App
)

var rootCmd = &cobra.Command{
	Use:   "dv",
	Short: "DocVault: versioned, content-addressed file storage",
	// 【关键】PersistentPreRunE 会在所有子命令执行前运行
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 跳过 init 命令的依赖检查 (因为它就是去创建环境的)
		if cmd.Name() == "init" {
			return nil
		}

		// 统一初始化 App
		var err error
		DV, err = app.NewApp(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to initialize docvault: %w\n(Did you run 'dv init'?)", err)
		}
		return nil
	},
}

// Execute 是入口
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// 在初始化时，加载配置
	cobra.OnInitialize(initConfig)

	// 1. 定义全局参数 --config
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.dv/config.yaml)")

	// 2. 定义 storage.path 参数，并绑定到 Viper
	// 这样用户既可以在 yaml 里写，也可以用 --storage-path 覆盖
	rootCmd.PersistentFlags().String("storage-path", "", "Directory to store objects")
	if err := viper.BindPFlag("storage.path", rootCmd.PersistentFlags().Lookup("storage-path")); err != nil {
		fmt.Println("Failed to bind flag:", err)
		os.Exit(1)
	}

	// 3. 调用者身份：--as 覆盖配置里的 identity.email
	rootCmd.PersistentFlags().String("as", "", "Act as this registered user (email)")
	if err := viper.BindPFlag("identity.email", rootCmd.PersistentFlags().Lookup("as")); err != nil {
		fmt.Println("Failed to bind flag:", err)
		os.Exit(1)
	}
}

// initConfig 读取配置文件和环境变量
func initConfig() {
	if err := config.Load(cfgFile); err != nil {
		fmt.Println("Config error:", err)
		os.Exit(1)
	}
}

// currentUser 解析当前操作的调用者
// 身份认证在系统外完成，这里只把 Email 映射成已注册用户
func currentUser(ctx context.Context) (*meta.User, error) {
	email := viper.GetString("identity.email")
	if email == "" {
		return nil, fmt.Errorf("no identity configured (set identity.email or use --as)")
	}
	u, err := DV.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("unknown user %q (run 'dv users add %s' first): %w", email, email, err)
	}
	return u, nil
}
