package quoterhttp

import (
	"errors"
	"fmt"
	"math/big"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alexkalak/go_univ3_quoting/services/quoterservice/src/quoterservice"
)

type QuoterHTTPServerConfig struct {
	Port uint
}

type QuoterHTTPServerDependencies struct {
	QuoterService quoterservice.QuoterService
}

func (d *QuoterHTTPServerDependencies) validate() error {
	if d.QuoterService == nil {
		return errors.New("quoter http server dependencies QuoterService cannot be nil")
	}
	return nil
}

type QuoterHTTPServer struct {
	config        QuoterHTTPServerConfig
	quoterService quoterservice.QuoterService
}

func New(config QuoterHTTPServerConfig, dependencies QuoterHTTPServerDependencies) (*QuoterHTTPServer, error) {
	if err := dependencies.validate(); err != nil {
		return nil, err
	}

	return &QuoterHTTPServer{
		config:        config,
		quoterService: dependencies.QuoterService,
	}, nil
}

func (s *QuoterHTTPServer) Start() error {
	router := gin.Default()

	v1 := router.Group("/api/v1")
	{
		v1.POST("/quote", s.handleQuote)
		v1.POST("/mint", s.handleMint)
		v1.GET("/quotes", s.handleRecentQuotes)
		v1.POST("/refresh", s.handleRefresh)
	}

	return router.Run(fmt.Sprintf(":%d", s.config.Port))
}

type response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type quoteRequest struct {
	TokenIn     string `json:"tokenIn" binding:"required"`
	TokenOut    string `json:"tokenOut" binding:"required"`
	Amount      string `json:"amount" binding:"required"`
	TradeType   string `json:"tradeType"`
	MaxHops     int    `json:"maxHops"`
	SlippageBps uint   `json:"slippageBps"`
}

type quoteResponse struct {
	TradeType   string   `json:"tradeType"`
	AmountIn    string   `json:"amountIn"`
	AmountOut   string   `json:"amountOut"`
	AmountLimit string   `json:"amountLimit"`
	RoutePath   string   `json:"routePath"`
	TokenPath   []string `json:"tokenPath"`
	PoolCount   int      `json:"poolCount"`
	BlockNumber int      `json:"blockNumber"`
}

func (s *QuoterHTTPServer) handleQuote(c *gin.Context) {
	req := quoteRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response{Code: 400, Message: err.Error()})
		return
	}

	amount, ok := new(big.Int).SetString(req.Amount, 10)
	if !ok || amount.Sign() <= 0 {
		c.JSON(http.StatusBadRequest, response{Code: 400, Message: "amount must be a positive base 10 integer"})
		return
	}

	serviceReq := quoterservice.QuoteRequest{
		TokenIn:     req.TokenIn,
		TokenOut:    req.TokenOut,
		Amount:      amount,
		MaxHops:     req.MaxHops,
		SlippageBps: req.SlippageBps,
	}

	var result quoterservice.QuoteResponse
	var err error
	switch req.TradeType {
	case "", "exactInput", "exactInputSingle":
		result, err = s.quoterService.QuoteExactInput(serviceReq)
	case "exactOutput", "exactOutputSingle":
		result, err = s.quoterService.QuoteExactOutput(serviceReq)
	default:
		c.JSON(http.StatusBadRequest, response{Code: 400, Message: "unknown trade type: " + req.TradeType})
		return
	}
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, response{Code: 422, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, response{
		Code:    200,
		Message: "success",
		Data: quoteResponse{
			TradeType:   result.TradeType,
			AmountIn:    result.AmountIn.String(),
			AmountOut:   result.AmountOut.String(),
			AmountLimit: result.AmountLimit.String(),
			RoutePath:   result.RoutePath,
			TokenPath:   result.TokenPath,
			PoolCount:   result.PoolCount,
			BlockNumber: result.BlockNumber,
		},
	})
}

type mintRequest struct {
	PoolAddress string `json:"poolAddress" binding:"required"`
	TickLower   int    `json:"tickLower"`
	TickUpper   int    `json:"tickUpper"`
	Liquidity   string `json:"liquidity" binding:"required"`
	SlippageBps uint   `json:"slippageBps"`
}

type mintResponse struct {
	Amount0    string `json:"amount0"`
	Amount1    string `json:"amount1"`
	Amount0Min string `json:"amount0Min"`
	Amount1Min string `json:"amount1Min"`
}

func (s *QuoterHTTPServer) handleMint(c *gin.Context) {
	req := mintRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response{Code: 400, Message: err.Error()})
		return
	}

	liquidity, ok := new(big.Int).SetString(req.Liquidity, 10)
	if !ok || liquidity.Sign() <= 0 {
		c.JSON(http.StatusBadRequest, response{Code: 400, Message: "liquidity must be a positive base 10 integer"})
		return
	}

	result, err := s.quoterService.QuoteMintAmounts(quoterservice.MintRequest{
		PoolAddress: req.PoolAddress,
		TickLower:   req.TickLower,
		TickUpper:   req.TickUpper,
		Liquidity:   liquidity,
		SlippageBps: req.SlippageBps,
	})
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, response{Code: 422, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, response{
		Code:    200,
		Message: "success",
		Data: mintResponse{
			Amount0:    result.Amount0.String(),
			Amount1:    result.Amount1.String(),
			Amount0Min: result.Amount0Min.String(),
			Amount1Min: result.Amount1Min.String(),
		},
	})
}

type recentQuoteResponse struct {
	ID          int    `json:"id"`
	TradeType   string `json:"tradeType"`
	TokenIn     string `json:"tokenIn"`
	TokenOut    string `json:"tokenOut"`
	AmountIn    string `json:"amountIn"`
	AmountOut   string `json:"amountOut"`
	RoutePath   string `json:"routePath"`
	PoolCount   int    `json:"poolCount"`
	BlockNumber int    `json:"blockNumber"`
	CreatedAt   string `json:"createdAt"`
}

func (s *QuoterHTTPServer) handleRecentQuotes(c *gin.Context) {
	quotes, err := s.quoterService.RecentQuotes(50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response{Code: 500, Message: err.Error()})
		return
	}

	result := make([]recentQuoteResponse, 0, len(quotes))
	for _, quote := range quotes {
		entry := recentQuoteResponse{
			ID:          quote.ID,
			TradeType:   quote.TradeType,
			TokenIn:     quote.TokenIn,
			TokenOut:    quote.TokenOut,
			RoutePath:   quote.RoutePath,
			PoolCount:   quote.PoolCount,
			BlockNumber: quote.BlockNumber,
			CreatedAt:   quote.CreatedAt.String(),
		}
		if quote.AmountIn != nil {
			entry.AmountIn = quote.AmountIn.String()
		}
		if quote.AmountOut != nil {
			entry.AmountOut = quote.AmountOut.String()
		}
		result = append(result, entry)
	}

	c.JSON(http.StatusOK, response{Code: 200, Message: "success", Data: result})
}

func (s *QuoterHTTPServer) handleRefresh(c *gin.Context) {
	if err := s.quoterService.RefreshGraph(); err != nil {
		c.JSON(http.StatusInternalServerError, response{Code: 500, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, response{Code: 200, Message: "success"})
}
