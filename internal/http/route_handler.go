package http

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/zcombinatorio/swap-engine/internal/domain"
	"github.com/zcombinatorio/swap-engine/internal/http/httputil"
	"github.com/zcombinatorio/swap-engine/internal/services/market"
	"github.com/zcombinatorio/swap-engine/internal/services/router"
)

type RouteHandler struct {
	registry *market.Registry
	finder   *router.Finder
}

func NewRouteHandler(registry *market.Registry, finder *router.Finder) *RouteHandler {
	return &RouteHandler{registry: registry, finder: finder}
}

func (h *RouteHandler) Root() string {
	return "/route"
}

func (h *RouteHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.GET("", h.getRoute)
}

type RouteResponse struct {
	Route domain.Route     `json:"route"`
	Kind  domain.RouteKind `json:"kind"`
	Path  []string         `json:"path"`
}

// @Summary Find swap route
// @Description Find the shortest pool path between two registry tokens and classify it.
// @Tags route
// @Produce json
// @Param from query string true "Input token symbol" example(SOL)
// @Param to query string true "Output token symbol" example(TEST)
// @Success 200 {object} httputil.Response{data=RouteResponse}
// @Failure 400 {object} httputil.Response "Invalid or identical tokens"
// @Failure 404 {object} httputil.Response "No route within the hop limit"
// @Router /api/v1/route [get]
func (h *RouteHandler) getRoute(c *gin.Context) {
	from, ok := h.registry.Token(c.Query("from"))
	if !ok {
		httputil.BadRequest(c, "unknown token: "+c.Query("from"))
		return
	}
	to, ok := h.registry.Token(c.Query("to"))
	if !ok {
		httputil.BadRequest(c, "unknown token: "+c.Query("to"))
		return
	}

	route, err := h.finder.FindRoute(from, to, 0)
	if err != nil {
		switch {
		case errors.Is(err, router.ErrSameToken):
			httputil.BadRequest(c, "input and output tokens are identical")
		case errors.Is(err, router.ErrNoRoute):
			httputil.NotFound(c, "no route found between tokens")
		default:
			httputil.InternalError(c, err.Error())
		}
		return
	}

	path := make([]string, 0, len(route.Hops)+1)
	for _, t := range route.Tokens() {
		path = append(path, t.Symbol)
	}
	httputil.Success(c, RouteResponse{
		Route: route,
		Kind:  router.Classify(route),
		Path:  path,
	})
}
