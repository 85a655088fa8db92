package service

import "go.uber.org/zap"

func zapUsername(username string) zap.Field { return zap.String("username", username) }

func zapErr(err error) zap.Field { return zap.Error(err) }
