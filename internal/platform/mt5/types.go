package mt5

import "github.com/Clover403/Doji-Hunter/internal/domain"

// Wire types for the terminal bridge RPC. Field names follow the MT5
// Python API that the bridge exposes verbatim.

// accountInfo mirrors mt5.account_info().
type accountInfo struct {
	Login       int64   `json:"login"`
	Name        string  `json:"name"`
	Server      string  `json:"server"`
	Currency    string  `json:"currency"`
	Balance     float64 `json:"balance"`
	Equity      float64 `json:"equity"`
	Margin      float64 `json:"margin"`
	MarginFree  float64 `json:"margin_free"`
	MarginLevel float64 `json:"margin_level"`
	Leverage    int     `json:"leverage"`
	TradeAllowed bool   `json:"trade_allowed"`
	TradeExpert  bool   `json:"trade_expert"`
}

func (a accountInfo) toDomain() *domain.AccountStatus {
	return &domain.AccountStatus{
		Login:          a.Login,
		Name:           a.Name,
		Server:         a.Server,
		Currency:       a.Currency,
		Balance:        a.Balance,
		Equity:         a.Equity,
		Margin:         a.Margin,
		MarginFree:     a.MarginFree,
		MarginLevel:    a.MarginLevel,
		Leverage:       a.Leverage,
		TradingAllowed: a.TradeAllowed,
		ExpertAllowed:  a.TradeExpert,
	}
}

// tick mirrors mt5.symbol_info_tick().
type tick struct {
	Bid float64 `json:"bid"`
	Ask float64 `json:"ask"`
}

// symbolInfo mirrors the subset of mt5.symbol_info() the gateway exposes.
type symbolInfo struct {
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	TradeContractSize float64 `json:"trade_contract_size"`
	VolumeMin         float64 `json:"volume_min"`
	VolumeMax         float64 `json:"volume_max"`
}

func (s symbolInfo) toDomain() domain.Symbol {
	return domain.Symbol{
		Name:         s.Name,
		Description:  s.Description,
		ContractSize: s.TradeContractSize,
		VolumeMin:    s.VolumeMin,
		VolumeMax:    s.VolumeMax,
	}
}

// rate mirrors one row of mt5.copy_rates_from_pos().
type rate struct {
	Time       int64   `json:"time"`
	Open       float64 `json:"open"`
	High       float64 `json:"high"`
	Low        float64 `json:"low"`
	Close      float64 `json:"close"`
	TickVolume int64   `json:"tick_volume"`
}

func (r rate) toDomain() domain.Candle {
	return domain.Candle{
		Time:   r.Time,
		Open:   r.Open,
		High:   r.High,
		Low:    r.Low,
		Close:  r.Close,
		Volume: r.TickVolume,
	}
}

// position mirrors one entry of mt5.positions_get(). Type 0 is a buy, 1 a
// sell.
type position struct {
	Ticket       int64   `json:"ticket"`
	Symbol       string  `json:"symbol"`
	Type         int     `json:"type"`
	Volume       float64 `json:"volume"`
	PriceOpen    float64 `json:"price_open"`
	PriceCurrent float64 `json:"price_current"`
	SL           float64 `json:"sl"`
	TP           float64 `json:"tp"`
	Profit       float64 `json:"profit"`
	Swap         float64 `json:"swap"`
	Time         int64   `json:"time"`
	Magic        int64   `json:"magic"`
	Comment      string  `json:"comment"`
}

func (p position) toDomain() domain.Position {
	side := domain.OrderSideBuy
	if p.Type == 1 {
		side = domain.OrderSideSell
	}
	return domain.Position{
		Ticket:       p.Ticket,
		Symbol:       p.Symbol,
		Side:         side,
		Volume:       p.Volume,
		OpenPrice:    p.PriceOpen,
		CurrentPrice: p.PriceCurrent,
		StopLoss:     p.SL,
		TakeProfit:   p.TP,
		Profit:       p.Profit,
		Swap:         p.Swap,
		OpenTime:     p.Time,
		Magic:        p.Magic,
		Comment:      p.Comment,
	}
}

// orderRequest mirrors the dict passed to mt5.order_send(). The action is
// always TRADE_ACTION_DEAL (market execution).
type orderRequest struct {
	Action      int     `json:"action"`
	Symbol      string  `json:"symbol"`
	Volume      float64 `json:"volume"`
	Type        int     `json:"type"`
	Price       float64 `json:"price"`
	SL          float64 `json:"sl"`
	TP          float64 `json:"tp"`
	Deviation   int     `json:"deviation"`
	Magic       int64   `json:"magic"`
	Comment     string  `json:"comment"`
	Position    int64   `json:"position,omitempty"`
	TypeTime    string  `json:"type_time"`
	TypeFilling string  `json:"type_filling"`
}

const tradeActionDeal = 1

func fromDomainRequest(req domain.VenueOrderRequest) orderRequest {
	typ := 0
	if req.Side == domain.OrderSideSell {
		typ = 1
	}
	return orderRequest{
		Action:      tradeActionDeal,
		Symbol:      req.Symbol,
		Volume:      req.Volume,
		Type:        typ,
		Price:       req.Price,
		SL:          req.StopLoss,
		TP:          req.TakeProfit,
		Deviation:   req.Deviation,
		Magic:       req.Magic,
		Comment:     req.Comment,
		Position:    req.Position,
		TypeTime:    req.TimeInForce,
		TypeFilling: req.Filling,
	}
}

// orderResult mirrors the result object of mt5.order_send().
type orderResult struct {
	Retcode int     `json:"retcode"`
	Order   int64   `json:"order"`
	Deal    int64   `json:"deal"`
	Price   float64 `json:"price"`
	Volume  float64 `json:"volume"`
	Comment string  `json:"comment"`
}

func (r orderResult) toDomain() domain.VenueAck {
	return domain.VenueAck{
		RetCode:      r.Retcode,
		OrderTicket:  r.Order,
		DealTicket:   r.Deal,
		FilledPrice:  r.Price,
		FilledVolume: r.Volume,
		Comment:      r.Comment,
	}
}
