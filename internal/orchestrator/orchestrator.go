// Package orchestrator coordinates the backend clients, the cached
// collections, and the pricing/participation checks behind the console's
// screens. It owns the only copies of the cached lists; collections are
// replaced wholesale after every successful mutation, never patched.
package orchestrator

import (
	"context"
	"strings"
	"sync"
	"time"

	"commerce-console/internal/broker"
	"commerce-console/internal/client"
	"commerce-console/internal/draft"
	"commerce-console/internal/errs"
	"commerce-console/internal/groupbuy"
	"commerce-console/internal/models"
	"commerce-console/internal/pricing"
	"commerce-console/internal/session"
	"commerce-console/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Collection names used for sequence tracking, metrics, and per-collection
// failure reporting.
const (
	ColProducts  = "products"
	ColGroupBuys = "groupbuys"
	ColOrders    = "orders"
	ColUsers     = "users"
)

// ViewState is the ephemeral product-list view: pagination, price filter,
// and the currently selected detail entity per list.
type ViewState struct {
	Page     int
	PageSize int
	MinPrice decimal.Decimal
	MaxPrice decimal.Decimal

	SelectedProduct  *models.Product
	SelectedGroupBuy *models.GroupBuy
	SelectedOrder    *models.Order
	SelectedUser     *models.User
}

// FanoutError reports per-collection failures from a concurrent load.
// Successfully fetched collections have already populated their caches.
type FanoutError struct {
	Failures map[string]error
}

func (e *FanoutError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, col := range []string{ColProducts, ColGroupBuys, ColOrders, ColUsers} {
		if err, ok := e.Failures[col]; ok {
			parts = append(parts, col+": "+err.Error())
		}
	}
	return "partial load failure: " + strings.Join(parts, "; ")
}

// fetchSeq guards a collection against stale-response overwrite: a response
// is applied only when it belongs to the latest issued fetch.
type fetchSeq struct {
	issued  uint64
	applied uint64
}

// Console is the orchestration layer for the admin screens.
type Console struct {
	catalog  *client.Catalog
	groups   *client.GroupBuys
	orders   *client.Orders
	users    *client.Users
	sessions *session.Manager
	audit    *broker.AuditPublisher
	logger   *zap.Logger

	mu           sync.Mutex
	productList  []models.Product
	groupBuyList []models.GroupBuy
	orderList    []models.Order
	userList     []models.User
	view         ViewState
	current      *session.Session
	seqs         map[string]*fetchSeq
}

// New creates a console over the four clients. audit may be nil when no
// broker is configured.
func New(
	catalog *client.Catalog,
	groups *client.GroupBuys,
	orders *client.Orders,
	users *client.Users,
	sessions *session.Manager,
	audit *broker.AuditPublisher,
	defaultPageSize int,
) *Console {
	if defaultPageSize < 1 {
		defaultPageSize = 5
	}
	return &Console{
		catalog:  catalog,
		groups:   groups,
		orders:   orders,
		users:    users,
		sessions: sessions,
		audit:    audit,
		logger:   util.GetLogger(),
		view: ViewState{
			Page:     1,
			PageSize: defaultPageSize,
			MinPrice: decimal.Zero,
			MaxPrice: draft.DefaultMaxPrice,
		},
		seqs: map[string]*fetchSeq{
			ColProducts:  {},
			ColGroupBuys: {},
			ColOrders:    {},
			ColUsers:     {},
		},
	}
}

// ---- cache accessors -------------------------------------------------------

// Products returns a copy of the cached product page.
func (c *Console) Products() []models.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Product(nil), c.productList...)
}

// GroupBuys returns a copy of the cached group-buy list.
func (c *Console) GroupBuys() []models.GroupBuy {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.GroupBuy(nil), c.groupBuyList...)
}

// Orders returns a copy of the cached order list.
func (c *Console) Orders() []models.Order {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Order(nil), c.orderList...)
}

// Users returns a copy of the cached user list.
func (c *Console) Users() []models.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.User(nil), c.userList...)
}

// View returns the current view-state (selections included).
func (c *Console) View() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Session returns the current session, or nil when unauthenticated.
func (c *Console) Session() *session.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *Console) findProduct(id int64) *models.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.productList {
		if c.productList[i].ID == id {
			p := c.productList[i]
			return &p
		}
	}
	return nil
}

func (c *Console) findGroupBuy(id int64) *models.GroupBuy {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.groupBuyList {
		if c.groupBuyList[i].ID == id {
			gb := c.groupBuyList[i]
			return &gb
		}
	}
	return nil
}

// ---- fetch sequencing ------------------------------------------------------

func (c *Console) beginFetch(col string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seqs[col].issued++
	return c.seqs[col].issued
}

// commitFetch applies a fetched collection unless a newer fetch for it has
// since been issued, in which case the response is discarded.
func (c *Console) commitFetch(col string, seq uint64, apply func()) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seqs[col].issued {
		util.StaleFetchesDiscarded.WithLabelValues(col).Inc()
		c.logger.Debug("Discarding stale fetch response",
			zap.String("collection", col),
			zap.Uint64("seq", seq),
			zap.Uint64("latest", c.seqs[col].issued))
		return false
	}
	c.seqs[col].applied = seq
	apply()
	return true
}

// ---- collection refresh ----------------------------------------------------

// LoadAll fetches products, group buys, and orders concurrently. A failure
// in one fetch does not cancel the others; failures are reported per
// collection via FanoutError while successful fetches populate their caches.
func (c *Console) LoadAll(ctx context.Context) error {
	ctx, span := util.StartSpan(ctx, "Console.LoadAll")
	defer span.End()

	type result struct {
		col string
		err error
	}

	fetches := []struct {
		col string
		fn  func(context.Context) error
	}{
		{ColProducts, c.RefreshProducts},
		{ColGroupBuys, c.RefreshGroupBuys},
		{ColOrders, c.RefreshOrders},
	}

	results := make([]result, len(fetches))
	var wg sync.WaitGroup
	for i, f := range fetches {
		wg.Add(1)
		go func(i int, col string, fn func(context.Context) error) {
			defer wg.Done()
			results[i] = result{col: col, err: fn(ctx)}
		}(i, f.col, f.fn)
	}
	wg.Wait()

	failures := make(map[string]error)
	for _, r := range results {
		if r.err != nil {
			c.logger.Warn("Collection load failed",
				zap.String("collection", r.col),
				zap.Error(r.err))
			failures[r.col] = r.err
		}
	}
	if len(failures) > 0 {
		return &FanoutError{Failures: failures}
	}
	return nil
}

func (c *Console) refreshCollection(col string, fetch func() (func(), error)) error {
	seq := c.beginFetch(col)
	start := time.Now()

	apply, err := fetch()
	util.CollectionFetchLatency.WithLabelValues(col).Observe(time.Since(start).Seconds())
	if err != nil {
		util.CollectionFetchesTotal.WithLabelValues(col, "error").Inc()
		return err
	}

	util.CollectionFetchesTotal.WithLabelValues(col, "success").Inc()
	c.commitFetch(col, seq, apply)
	return nil
}

// RefreshProducts re-fetches the product page described by the current
// view-state and replaces the cache wholesale.
func (c *Console) RefreshProducts(ctx context.Context) error {
	c.mu.Lock()
	page, size := c.view.Page, c.view.PageSize
	minPrice, maxPrice := c.view.MinPrice, c.view.MaxPrice
	c.mu.Unlock()

	return c.refreshCollection(ColProducts, func() (func(), error) {
		products, err := c.catalog.List(ctx, page, size, minPrice, maxPrice)
		if err != nil {
			return nil, err
		}
		return func() { c.productList = products }, nil
	})
}

// RefreshGroupBuys replaces the group-buy cache wholesale.
func (c *Console) RefreshGroupBuys(ctx context.Context) error {
	return c.refreshCollection(ColGroupBuys, func() (func(), error) {
		groupBuys, err := c.groups.List(ctx)
		if err != nil {
			return nil, err
		}
		return func() { c.groupBuyList = groupBuys }, nil
	})
}

// RefreshOrders replaces the order cache wholesale.
func (c *Console) RefreshOrders(ctx context.Context) error {
	return c.refreshCollection(ColOrders, func() (func(), error) {
		orders, err := c.orders.List(ctx)
		if err != nil {
			return nil, err
		}
		return func() { c.orderList = orders }, nil
	})
}

// RefreshUsers replaces the user cache wholesale; requires a session.
func (c *Console) RefreshUsers(ctx context.Context) error {
	token, err := c.token()
	if err != nil {
		return err
	}
	return c.refreshCollection(ColUsers, func() (func(), error) {
		users, err := c.users.List(ctx, token)
		if err != nil {
			return nil, c.handleAuthFailure(ctx, err)
		}
		return func() { c.userList = users }, nil
	})
}

// ---- view-state ------------------------------------------------------------

// SetPage moves the product list to a page and re-fetches it.
func (c *Console) SetPage(ctx context.Context, page int) error {
	if page < 1 {
		return errs.Validation("page", "must be at least 1")
	}
	c.mu.Lock()
	c.view.Page = page
	c.mu.Unlock()
	return c.RefreshProducts(ctx)
}

// SetPageSize changes the page size, resets to the first page, and
// re-fetches.
func (c *Console) SetPageSize(ctx context.Context, size int) error {
	if size < 1 {
		return errs.Validation("pageSize", "must be at least 1")
	}
	c.mu.Lock()
	c.view.PageSize = size
	c.view.Page = 1
	c.mu.Unlock()
	return c.RefreshProducts(ctx)
}

// ApplyPriceFilter validates and applies new filter bounds, then
// re-fetches. An invalid filter surfaces the validation message and leaves
// both the view-state and the previously fetched product list untouched.
func (c *Console) ApplyPriceFilter(ctx context.Context, in draft.FilterInput) error {
	minPrice, maxPrice, err := draft.PriceFilter(in)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.view.MinPrice = minPrice
	c.view.MaxPrice = maxPrice
	c.view.Page = 1
	c.mu.Unlock()
	return c.RefreshProducts(ctx)
}

// SelectProduct fetches a product's detail and records it as the list
// selection; the cached copy is what the fetch returned, no partial merge.
func (c *Console) SelectProduct(ctx context.Context, id int64) (*models.Product, error) {
	product, err := c.catalog.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.view.SelectedProduct = product
	c.mu.Unlock()
	return product, nil
}

// SelectGroupBuy fetches a group buy's detail and records the selection.
func (c *Console) SelectGroupBuy(ctx context.Context, id int64) (*models.GroupBuy, error) {
	gb, err := c.groups.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.view.SelectedGroupBuy = gb
	c.mu.Unlock()
	return gb, nil
}

// SelectOrder fetches an order's detail and records the selection.
func (c *Console) SelectOrder(ctx context.Context, id int64) (*models.Order, error) {
	order, err := c.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.view.SelectedOrder = order
	c.mu.Unlock()
	return order, nil
}

// SelectUser fetches a user's detail and records the selection; requires a
// session.
func (c *Console) SelectUser(ctx context.Context, id int64) (*models.User, error) {
	token, err := c.token()
	if err != nil {
		return nil, err
	}
	user, err := c.users.Get(ctx, token, id)
	if err != nil {
		return nil, c.handleAuthFailure(ctx, err)
	}
	c.mu.Lock()
	c.view.SelectedUser = user
	c.mu.Unlock()
	return user, nil
}

// ClearSelections drops the per-list detail selections, as happens on
// navigation.
func (c *Console) ClearSelections() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.SelectedProduct = nil
	c.view.SelectedGroupBuy = nil
	c.view.SelectedOrder = nil
	c.view.SelectedUser = nil
}

// ---- product mutations -----------------------------------------------------

// CreateProduct validates the form, creates the product, and re-fetches the
// product page.
func (c *Console) CreateProduct(ctx context.Context, in draft.ProductInput) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "Console.CreateProduct")
	defer span.End()

	d, err := draft.NewProduct(in)
	if err != nil {
		util.MutationsTotal.WithLabelValues("product", "create", "validation").Inc()
		return nil, err
	}

	product, err := c.catalog.Create(ctx, d)
	if err != nil {
		util.MutationsTotal.WithLabelValues("product", "create", "error").Inc()
		return nil, err
	}
	util.MutationsTotal.WithLabelValues("product", "create", "success").Inc()
	c.logger.Info("Product created", zap.Int64("product_id", product.ID))

	if err := c.RefreshProducts(ctx); err != nil {
		c.logger.Warn("Post-create product refresh failed", zap.Error(err))
	}
	c.publishAudit(ctx, models.EventTypeProductCreated, "product", "create", product.ID)
	return product, nil
}

// UpdateProduct validates the form, updates the product, and re-fetches the
// product page.
func (c *Console) UpdateProduct(ctx context.Context, id int64, in draft.ProductInput) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "Console.UpdateProduct")
	defer span.End()

	d, err := draft.NewProduct(in)
	if err != nil {
		util.MutationsTotal.WithLabelValues("product", "update", "validation").Inc()
		return nil, err
	}

	product, err := c.catalog.Update(ctx, id, d)
	if err != nil {
		util.MutationsTotal.WithLabelValues("product", "update", "error").Inc()
		return nil, err
	}
	util.MutationsTotal.WithLabelValues("product", "update", "success").Inc()

	if err := c.RefreshProducts(ctx); err != nil {
		c.logger.Warn("Post-update product refresh failed", zap.Error(err))
	}
	c.publishAudit(ctx, models.EventTypeProductUpdated, "product", "update", id)
	return product, nil
}

// DeleteProduct deletes the product and re-fetches the product page. A
// remote 404 means another actor already deleted it, which is the desired
// end state.
func (c *Console) DeleteProduct(ctx context.Context, id int64) error {
	ctx, span := util.StartSpan(ctx, "Console.DeleteProduct")
	defer span.End()

	if err := c.catalog.Delete(ctx, id); err != nil && !errs.IsNotFound(err) {
		util.MutationsTotal.WithLabelValues("product", "delete", "error").Inc()
		return err
	}
	util.MutationsTotal.WithLabelValues("product", "delete", "success").Inc()

	if err := c.RefreshProducts(ctx); err != nil {
		c.logger.Warn("Post-delete product refresh failed", zap.Error(err))
	}
	c.publishAudit(ctx, models.EventTypeProductDeleted, "product", "delete", id)
	return nil
}

// ---- group-buy mutations ---------------------------------------------------

// CreateGroupBuy validates the form, resolves the referenced product, and
// creates the group buy. The product is looked up in the cache first and
// against the catalog on a miss; an unresolvable product fails locally.
func (c *Console) CreateGroupBuy(ctx context.Context, in draft.GroupBuyInput) (*models.GroupBuy, error) {
	ctx, span := util.StartSpan(ctx, "Console.CreateGroupBuy")
	defer span.End()

	d, err := draft.NewGroupBuy(in)
	if err != nil {
		util.MutationsTotal.WithLabelValues("groupbuy", "create", "validation").Inc()
		return nil, err
	}

	if c.findProduct(d.ProductID) == nil {
		if _, err := c.catalog.Get(ctx, d.ProductID); err != nil {
			util.MutationsTotal.WithLabelValues("groupbuy", "create", "validation").Inc()
			if errs.IsNotFound(err) {
				return nil, errs.Validation("product_id", "does not reference a known product")
			}
			return nil, err
		}
	}

	gb, err := c.groups.Create(ctx, d)
	if err != nil {
		util.MutationsTotal.WithLabelValues("groupbuy", "create", "error").Inc()
		return nil, err
	}
	util.MutationsTotal.WithLabelValues("groupbuy", "create", "success").Inc()
	c.logger.Info("Group buy created",
		zap.Int64("groupbuy_id", gb.ID),
		zap.Int64("product_id", gb.ProductID))

	if err := c.RefreshGroupBuys(ctx); err != nil {
		c.logger.Warn("Post-create group-buy refresh failed", zap.Error(err))
	}
	c.publishAudit(ctx, models.EventTypeGroupBuyCreated, "groupbuy", "create", gb.ID)
	return gb, nil
}

// JoinGroupBuy checks join eligibility against the cached group buy, falling
// back to a backend lookup on a cache miss, and, if permitted, issues exactly
// one join request. On success the group-buy collection is re-fetched rather
// than the counter incremented locally: the authoritative participant count
// and any flip to completed belong to the backend.
func (c *Console) JoinGroupBuy(ctx context.Context, id int64) (*models.GroupBuy, error) {
	ctx, span := util.StartSpan(ctx, "Console.JoinGroupBuy")
	defer span.End()

	target := c.findGroupBuy(id)
	if target == nil {
		fetched, err := c.groups.Get(ctx, id)
		if err != nil && !errs.IsNotFound(err) {
			util.MutationsTotal.WithLabelValues("groupbuy", "join", "error").Inc()
			return nil, err
		}
		target = fetched
	}

	if err := groupbuy.CheckJoin(target); err != nil {
		util.JoinRejectionsTotal.Inc()
		util.MutationsTotal.WithLabelValues("groupbuy", "join", "rejected").Inc()
		return nil, err
	}

	gb, err := c.groups.Join(ctx, id)
	if err != nil {
		util.MutationsTotal.WithLabelValues("groupbuy", "join", "error").Inc()
		return nil, err
	}
	util.MutationsTotal.WithLabelValues("groupbuy", "join", "success").Inc()
	c.logger.Info("Joined group buy",
		zap.Int64("groupbuy_id", id),
		zap.Int("participants", gb.Participants))

	if err := c.RefreshGroupBuys(ctx); err != nil {
		c.logger.Warn("Post-join group-buy refresh failed", zap.Error(err))
	}
	c.publishAudit(ctx, models.EventTypeGroupBuyJoined, "groupbuy", "join", id)
	return gb, nil
}

// DeleteGroupBuy deletes the group buy and re-fetches the collection;
// remote 404 is treated as already deleted.
func (c *Console) DeleteGroupBuy(ctx context.Context, id int64) error {
	ctx, span := util.StartSpan(ctx, "Console.DeleteGroupBuy")
	defer span.End()

	if err := c.groups.Delete(ctx, id); err != nil && !errs.IsNotFound(err) {
		util.MutationsTotal.WithLabelValues("groupbuy", "delete", "error").Inc()
		return err
	}
	util.MutationsTotal.WithLabelValues("groupbuy", "delete", "success").Inc()

	if err := c.RefreshGroupBuys(ctx); err != nil {
		c.logger.Warn("Post-delete group-buy refresh failed", zap.Error(err))
	}
	c.publishAudit(ctx, models.EventTypeGroupBuyDeleted, "groupbuy", "delete", id)
	return nil
}

// ---- order mutations -------------------------------------------------------

// CreateOrder validates the form, resolves the product and group buy from
// the caches, prices the order, and submits it. A total that cannot be
// resolved is rejected as inputs_missing; a resolved but non-positive total
// (discount of 100) is rejected as nonpositive_total. The priced total is
// transmitted as-is; the backend stays the final authority on acceptance.
func (c *Console) CreateOrder(ctx context.Context, in draft.OrderInput) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "Console.CreateOrder")
	defer span.End()

	d, err := draft.NewOrder(in)
	if err != nil {
		util.MutationsTotal.WithLabelValues("order", "create", "validation").Inc()
		return nil, err
	}

	product := c.findProduct(d.ProductID)
	gb := c.findGroupBuy(d.GroupBuyID)

	quote := pricing.ComputeTotal(product, gb, d.Quantity)
	if !quote.Resolved {
		util.PricingRejectionsTotal.WithLabelValues(errs.ReasonInputsMissing).Inc()
		util.MutationsTotal.WithLabelValues("order", "create", "validation").Inc()
		return nil, errs.ValidationReason(errs.ReasonInputsMissing)
	}
	if !quote.Submittable() {
		util.PricingRejectionsTotal.WithLabelValues(errs.ReasonNonpositiveTotal).Inc()
		util.MutationsTotal.WithLabelValues("order", "create", "validation").Inc()
		return nil, errs.ValidationReason(errs.ReasonNonpositiveTotal)
	}
	d.TotalPrice = quote.Total

	order, err := c.orders.Create(ctx, d)
	if err != nil {
		util.MutationsTotal.WithLabelValues("order", "create", "error").Inc()
		return nil, err
	}
	util.MutationsTotal.WithLabelValues("order", "create", "success").Inc()
	c.logger.Info("Order created",
		zap.Int64("order_id", order.ID),
		zap.String("total_price", order.TotalPrice.String()))

	if err := c.RefreshOrders(ctx); err != nil {
		c.logger.Warn("Post-create order refresh failed", zap.Error(err))
	}
	c.publishAudit(ctx, models.EventTypeOrderCreated, "order", "create", order.ID)
	return order, nil
}

// DeleteOrder deletes the order and re-fetches the collection; remote 404
// is treated as already deleted.
func (c *Console) DeleteOrder(ctx context.Context, id int64) error {
	ctx, span := util.StartSpan(ctx, "Console.DeleteOrder")
	defer span.End()

	if err := c.orders.Delete(ctx, id); err != nil && !errs.IsNotFound(err) {
		util.MutationsTotal.WithLabelValues("order", "delete", "error").Inc()
		return err
	}
	util.MutationsTotal.WithLabelValues("order", "delete", "success").Inc()

	if err := c.RefreshOrders(ctx); err != nil {
		c.logger.Warn("Post-delete order refresh failed", zap.Error(err))
	}
	c.publishAudit(ctx, models.EventTypeOrderDeleted, "order", "delete", id)
	return nil
}

// ---- auth and users --------------------------------------------------------

// Login exchanges credentials for a token and opens a session.
func (c *Console) Login(ctx context.Context, username, password string) (*session.Session, error) {
	ctx, span := util.StartSpan(ctx, "Console.Login")
	defer span.End()

	token, err := c.users.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	sess, err := c.sessions.Create(ctx, username, token)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.current = sess
	c.mu.Unlock()

	c.logger.Info("Session opened", zap.String("username", username))
	c.publishAudit(ctx, models.EventTypeLogin, "session", "login", 0)
	return sess, nil
}

// Register creates an account; it does not open a session.
func (c *Console) Register(ctx context.Context, username, password string) (*models.User, error) {
	return c.users.Register(ctx, username, password)
}

// Resume restores a previously stored session, e.g. from a browser cookie.
func (c *Console) Resume(ctx context.Context, sessionID string) error {
	sess, err := c.sessions.Load(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess == nil {
		return &errs.AuthError{RemoteError: errs.RemoteError{
			Service: "auth", Status: 401, Body: "session expired",
		}}
	}
	c.mu.Lock()
	c.current = sess
	c.mu.Unlock()
	return nil
}

// Logout clears the stored credential and drops the user cache.
func (c *Console) Logout(ctx context.Context) {
	c.mu.Lock()
	sess := c.current
	c.current = nil
	c.userList = nil
	c.view.SelectedUser = nil
	c.mu.Unlock()

	if sess != nil {
		if err := c.sessions.Clear(ctx, sess.ID); err != nil {
			c.logger.Warn("Failed to clear stored session", zap.Error(err))
		}
		c.publishAudit(ctx, models.EventTypeLogout, "session", "logout", 0)
	}
}

// UpdateUser validates the form and updates the user, then re-fetches the
// user list.
func (c *Console) UpdateUser(ctx context.Context, id int64, in draft.UserInput) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "Console.UpdateUser")
	defer span.End()

	d, err := draft.NewUser(in)
	if err != nil {
		util.MutationsTotal.WithLabelValues("user", "update", "validation").Inc()
		return nil, err
	}

	token, err := c.token()
	if err != nil {
		return nil, err
	}

	user, err := c.users.Update(ctx, token, id, d)
	if err != nil {
		util.MutationsTotal.WithLabelValues("user", "update", "error").Inc()
		return nil, c.handleAuthFailure(ctx, err)
	}
	util.MutationsTotal.WithLabelValues("user", "update", "success").Inc()

	if err := c.RefreshUsers(ctx); err != nil {
		c.logger.Warn("Post-update user refresh failed", zap.Error(err))
	}
	c.publishAudit(ctx, models.EventTypeUserUpdated, "user", "update", id)
	return user, nil
}

// DeleteUser deletes the user and re-fetches the list; remote 404 is
// treated as already deleted.
func (c *Console) DeleteUser(ctx context.Context, id int64) error {
	ctx, span := util.StartSpan(ctx, "Console.DeleteUser")
	defer span.End()

	token, err := c.token()
	if err != nil {
		return err
	}

	if err := c.users.Delete(ctx, token, id); err != nil && !errs.IsNotFound(err) {
		util.MutationsTotal.WithLabelValues("user", "delete", "error").Inc()
		return c.handleAuthFailure(ctx, err)
	}
	util.MutationsTotal.WithLabelValues("user", "delete", "success").Inc()

	if err := c.RefreshUsers(ctx); err != nil {
		c.logger.Warn("Post-delete user refresh failed", zap.Error(err))
	}
	c.publishAudit(ctx, models.EventTypeUserDeleted, "user", "delete", id)
	return nil
}

// token returns the current bearer credential; without one, authenticated
// operations fail with the same signal an expired token produces.
func (c *Console) token() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return "", &errs.AuthError{RemoteError: errs.RemoteError{
			Service: "auth", Status: 401, Body: "no active session",
		}}
	}
	return c.current.Token, nil
}

// handleAuthFailure clears the stored credential when the backend rejected
// it, forcing the console back to the unauthenticated view.
func (c *Console) handleAuthFailure(ctx context.Context, err error) error {
	if !errs.IsAuth(err) {
		return err
	}

	c.mu.Lock()
	sess := c.current
	c.current = nil
	c.userList = nil
	c.view.SelectedUser = nil
	c.mu.Unlock()

	util.AuthFailuresTotal.Inc()
	if sess != nil {
		if clearErr := c.sessions.Clear(ctx, sess.ID); clearErr != nil {
			c.logger.Warn("Failed to clear rejected session", zap.Error(clearErr))
		}
	}
	c.logger.Warn("Credential rejected by auth service; session cleared")
	return err
}

func (c *Console) publishAudit(ctx context.Context, eventType, resource, action string, id int64) {
	actor := ""
	c.mu.Lock()
	if c.current != nil {
		actor = c.current.Username
	}
	c.mu.Unlock()

	if err := c.audit.PublishAction(ctx, eventType, resource, action, id, actor); err != nil {
		util.AuditPublishFailures.Inc()
		c.logger.Warn("Failed to publish audit event",
			zap.String("event_type", eventType),
			zap.Error(err))
	}
}
