package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

const corsAllowedHeaders = "authorization, x-client-info, apikey, content-type"

// CORS answers preflight requests for every route. Credentials are only
// allowed when origins are listed explicitly.
func CORS(origins []string) fiber.Handler {
	config := cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: corsAllowedHeaders,
	}
	if len(origins) > 0 && !(len(origins) == 1 && origins[0] == "*") {
		config.AllowOrigins = strings.Join(origins, ",")
		config.AllowCredentials = true
	}
	return cors.New(config)
}
