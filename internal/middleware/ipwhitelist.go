package middleware

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"go.uber.org/zap"

	"OnDuty/config"
	"OnDuty/pkg/errors"
	"OnDuty/pkg/logger"
	"OnDuty/pkg/response"
)

var (
	whitelistNets []*net.IPNet
	whitelistIPs  []net.IP
)

// initIPWhitelist 解析 IP_WHITELIST 配置，支持单个 IP 和 CIDR，逗号或换行分隔
func initIPWhitelist() error {
	whitelistNets = nil
	whitelistIPs = nil

	if !config.Cfg.IPWhitelistEnabled {
		return nil
	}

	raw := strings.FieldsFunc(config.Cfg.IPWhitelist, func(r rune) bool {
		return r == ',' || r == '\n'
	})

	for _, entry := range raw {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		if strings.Contains(entry, "/") {
			_, ipNet, err := net.ParseCIDR(entry)
			if err != nil {
				return fmt.Errorf("invalid CIDR in IP whitelist: %q", entry)
			}
			whitelistNets = append(whitelistNets, ipNet)
			continue
		}

		ip := net.ParseIP(entry)
		if ip == nil {
			return fmt.Errorf("invalid IP in IP whitelist: %q", entry)
		}
		whitelistIPs = append(whitelistIPs, ip)
	}

	logger.Logger.Info("IP whitelist initialized",
		zap.Int("networks", len(whitelistNets)),
		zap.Int("addresses", len(whitelistIPs)))
	return nil
}

func ipAllowed(ip net.IP) bool {
	for _, allowed := range whitelistIPs {
		if allowed.Equal(ip) {
			return true
		}
	}
	for _, ipNet := range whitelistNets {
		if ipNet.Contains(ip) {
			return true
		}
	}
	return false
}

// IPWhitelistMiddleware 限制打卡请求只能来自白名单网络（如办公室出口 IP）
func IPWhitelistMiddleware() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		if !config.Cfg.IPWhitelistEnabled {
			c.Next(ctx)
			return
		}

		clientIP := net.ParseIP(c.ClientIP())
		if clientIP == nil || !ipAllowed(clientIP) {
			logger.Logger.Warn("Scan rejected by IP whitelist",
				zap.String("client_ip", c.ClientIP()),
				zap.String("path", string(c.Path())))
			c.Abort()
			response.Error(ctx, c, errors.IPNotAllowed)
			return
		}

		c.Next(ctx)
	}
}
