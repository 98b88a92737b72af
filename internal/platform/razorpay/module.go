package razorpay

import "go.uber.org/fx"

// Module provides the shared gateway client.
var Module = fx.Options(
	fx.Provide(New, AsGateway),
)
