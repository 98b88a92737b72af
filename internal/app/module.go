package app

import (
	"time"

	"github.com/fatflowers/agrobill/internal/app/api/server"
	"github.com/fatflowers/agrobill/internal/app/service/checkout"
	"github.com/fatflowers/agrobill/internal/app/service/ledger"
	notificationlog "github.com/fatflowers/agrobill/internal/app/service/notification_log"
	"github.com/fatflowers/agrobill/internal/app/service/pricing"
	"github.com/fatflowers/agrobill/internal/app/service/statistics"
	"github.com/fatflowers/agrobill/internal/app/service/subscription"
	"github.com/fatflowers/agrobill/internal/app/service/webhook"
	"github.com/fatflowers/agrobill/internal/platform/archive"
	"github.com/fatflowers/agrobill/internal/platform/db"
	"github.com/fatflowers/agrobill/internal/platform/razorpay"
	"github.com/fatflowers/agrobill/internal/platform/redis"
	"github.com/fatflowers/agrobill/pkg/config"
	"github.com/fatflowers/agrobill/pkg/logger"

	"go.uber.org/fx"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	razorpay.Module,
	redis.Module,
	archive.Module,
	pricing.Module,
	subscription.Module,
	ledger.Module,
	notificationlog.Module,
	webhook.Module,
	checkout.Module,
	statistics.Module,
	server.Module,
)
