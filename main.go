package main

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sokoni-app/sokoni-api/initializers"
	"github.com/sokoni-app/sokoni-api/myid"
	"github.com/sokoni-app/sokoni-api/payment"
	"github.com/sokoni-app/sokoni-api/reconciler"
	"github.com/sokoni-app/sokoni-api/routes"
)

func main() {
	initializers.LoadEnv()

	db, err := initializers.ConnectToDB()
	if err != nil {
		log.Fatal(err)
	}
	if err := initializers.SyncDatabase(db); err != nil {
		log.Fatal(err)
	}

	// Gateway selection: a configured processor URL wins, otherwise the
	// deterministic simulator carries development and staging.
	var gateway payment.Gateway
	var httpGateway *payment.HTTPGateway
	if baseURL := os.Getenv("PAYMENT_BASE_URL"); baseURL != "" {
		httpGateway = payment.NewHTTPGateway(
			baseURL,
			os.Getenv("PAYMENT_CONSUMER_KEY"),
			os.Getenv("PAYMENT_CONSUMER_SECRET"),
			os.Getenv("PAYMENT_CALLBACK_URL"),
			os.Getenv("PAYMENT_NOTIFICATION_ID"),
			os.Getenv("PAYMENT_CURRENCY"),
		)
		gateway = httpGateway
	} else {
		gateway = payment.NewSimulatedGateway(time.Now().UnixNano(), 2*time.Second)
		log.Println("PAYMENT_BASE_URL not set, using the simulated payment gateway.")
	}

	myidClient := myid.NewClient(os.Getenv("MYID_BASE_URL"), os.Getenv("MYID_API_KEY"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go reconciler.New(db, 24*time.Hour, time.Hour).Run(ctx)

	server := gin.Default()
	server.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(os.Getenv("CORS_ORIGINS"), ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Idempotency-Key"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.DefaultRoutes(server)
	routes.AuthRoutes(server, db, myidClient)
	routes.ProductRoutes(server, db, os.Getenv("IMAGE_BUCKET"))
	routes.CartRoutes(server, db)
	routes.OrderRoutes(server, db, gateway, httpGateway)
	routes.FavoriteRoutes(server, db)
	routes.SellerRoutes(server, db)

	server.Run()
}
