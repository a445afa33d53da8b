package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fitgenAPI/handlers"
	"fitgenAPI/internal/store"
	"fitgenAPI/internal/workers"
	"fitgenAPI/middleware"
	"fitgenAPI/services"
)

var (
	db                 *store.Firestore
	userService        *services.UserService
	socialService      *services.SocialService
	challengeService   *services.ChallengeService
	leaderboardService *services.LeaderboardService
	planService        *services.PlanService
	dailySweep         *workers.DailySweep
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	clerkSecretKey := os.Getenv("CLERK_SECRET_KEY")
	if clerkSecretKey == "" {
		log.Fatal("CLERK_SECRET_KEY environment variable is not set")
	}
	clerk.SetKey(clerkSecretKey)
	log.Println("Clerk initialized successfully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	db, err = store.NewFirestore(ctx)
	if err != nil {
		log.Fatal("Failed to connect to Firestore:", err)
	}
	log.Println("Successfully connected to Firestore")

	userService = services.NewUserService(db)
	socialService = services.NewSocialService(db, db, db, db)
	challengeService = services.NewChallengeService(db, db, db)
	leaderboardService = services.NewLeaderboardService(db, db, db)
	planService = services.NewPlanService(db)
	dailySweep = workers.NewDailySweep(db, challengeService, socialService)

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		log.Println("Closing Firestore client...")
		if err := db.Close(); err != nil {
			log.Printf("Firestore close error: %v", err)
		}
	}()

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService)
	socialHandler := handlers.NewSocialHandler(socialService)
	challengeHandler := handlers.NewChallengeHandler(challengeService)
	leaderboardHandler := handlers.NewLeaderboardHandler(leaderboardService)
	planHandler := handlers.NewPlanHandler(planService)

	r := mux.NewRouter()

	standardRouter := r.PathPrefix("/").Subrouter()

	go middleware.CleanupVisitors()

	standardRouter.Use(middleware.RateLimitMiddleware)
	standardRouter.Use(middleware.MonitorMiddleware)

	standardRouter.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))

	standardRouter.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "fitgen-api"}`))
	}).Methods("GET")

	// -------------------------------------------------------------------------
	// API V1 SUBROUTER
	// -------------------------------------------------------------------------
	api := standardRouter.PathPrefix("/api/v1").Subrouter()

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.ClerkAuthMiddleware)

	protected.HandleFunc("/user/register", userHandler.CompleteRegistration).Methods("POST")
	protected.HandleFunc("/user", userHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/user", userHandler.UpdateProfile).Methods("PUT")
	protected.HandleFunc("/user/username-available", userHandler.CheckUsername).Methods("GET")
	protected.HandleFunc("/user/friend-code", userHandler.GetFriendCode).Methods("GET")

	protected.HandleFunc("/challenges/today", challengeHandler.GetTodayChallenge).Methods("GET")
	protected.HandleFunc("/challenges/{challengeID}/complete", challengeHandler.CompleteChallenge).Methods("POST")
	protected.HandleFunc("/challenges/check-missed", challengeHandler.CheckMissedChallenges).Methods("POST")
	protected.HandleFunc("/streak", challengeHandler.GetStreak).Methods("GET")

	protected.HandleFunc("/friends", socialHandler.GetFriends).Methods("GET")
	protected.HandleFunc("/friends/{friendID}", socialHandler.RemoveFriend).Methods("DELETE")
	protected.HandleFunc("/friends/requests", socialHandler.GetPendingRequests).Methods("GET")
	protected.HandleFunc("/friends/requests", socialHandler.SendFriendRequest).Methods("POST")
	protected.HandleFunc("/friends/requests/{requestID}/accept", socialHandler.AcceptFriendRequest).Methods("POST")
	protected.HandleFunc("/friends/requests/{requestID}/reject", socialHandler.RejectFriendRequest).Methods("POST")

	protected.HandleFunc("/leaderboard", leaderboardHandler.GetLeaderboard).Methods("GET")

	protected.HandleFunc("/plans/current-week", planHandler.GetCurrentWeekPlan).Methods("GET")
	protected.HandleFunc("/plans/current-week", planHandler.SaveWeeklyPlan).Methods("PUT")

	// WebSocket snapshot streams. Auth rides on the token query parameter.
	protected.HandleFunc("/friends/ws", socialHandler.FriendsStream)
	protected.HandleFunc("/friends/requests/ws", socialHandler.FriendRequestsStream)
	protected.HandleFunc("/leaderboard/ws", leaderboardHandler.LeaderboardStream)

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	if err := dailySweep.Start(); err != nil {
		log.Fatal("Failed to start daily sweep:", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	dailySweep.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
