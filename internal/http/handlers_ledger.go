package http

import (
	"fmt"
	"net/http"
	"strings"

	"anggaran/internal/core"
	"anggaran/internal/export"
	applog "anggaran/internal/log"
)

// Incomes

type fixedIncomeRequest struct {
	Amount Amount `json:"amount"`
}

type incomeRequest struct {
	Name   string `json:"name" validate:"required,max=100"`
	Amount Amount `json:"amount"`
}

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request) {
	incomes, err := s.deps.Ledger.ListIncomes(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(incomes).Write(w)
}

func (s *Server) handleSetFixedIncome(w http.ResponseWriter, r *http.Request) {
	var req fixedIncomeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	inc, err := s.deps.Ledger.SetFixedIncome(r.Context(), req.Amount.Int64())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(inc).TriggerChanged(EventIncomes).Write(w)
}

func (s *Server) handleAddIncome(w http.ResponseWriter, r *http.Request) {
	var req incomeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	inc, err := s.deps.Ledger.AddIncome(r.Context(), sanitizeInput(req.Name), req.Amount.Int64())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Status(http.StatusCreated).JSON(inc).TriggerChanged(EventIncomes).Write(w)
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Ledger.DeleteIncome(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Status(http.StatusNoContent).TriggerChanged(EventIncomes).Write(w)
}

// Debts

type debtRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Amount      Amount `json:"amount"`
	Type        string `json:"type" validate:"max=50"`
	DueDate     string `json:"due_date" validate:"max=50"`
	Description string `json:"description" validate:"max=200"`
}

func (s *Server) handleListDebts(w http.ResponseWriter, r *http.Request) {
	debts, err := s.deps.Ledger.ListDebts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(debts).Write(w)
}

func (s *Server) handleAddDebt(w http.ResponseWriter, r *http.Request) {
	var req debtRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	d, err := s.deps.Ledger.AddDebt(r.Context(), core.Debt{
		Name:        sanitizeInput(req.Name),
		Amount:      req.Amount.Int64(),
		Type:        sanitizeInput(req.Type),
		DueNote:     sanitizeInput(req.DueDate),
		Description: sanitizeInput(req.Description),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Status(http.StatusCreated).JSON(d).TriggerChanged(EventDebts).Write(w)
}

func (s *Server) handleToggleDebt(w http.ResponseWriter, r *http.Request) {
	d, err := s.deps.Ledger.ToggleDebt(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(d).TriggerChanged(EventDebts).Write(w)
}

func (s *Server) handleDeleteDebt(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Ledger.DeleteDebt(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Status(http.StatusNoContent).TriggerChanged(EventDebts).Write(w)
}

// Sinking funds

type sinkingFundRequest struct {
	Name          string    `json:"name" validate:"required,max=100"`
	TargetAmount  Amount    `json:"target_amount"`
	CurrentAmount Amount    `json:"current_amount"`
	DueDate       core.Date `json:"due_date"`
}

func (s *Server) handleListSinkingFunds(w http.ResponseWriter, r *http.Request) {
	funds, err := s.deps.Ledger.ListSinkingFunds(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(funds).Write(w)
}

func (s *Server) handleAddSinkingFund(w http.ResponseWriter, r *http.Request) {
	var req sinkingFundRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	f, err := s.deps.Ledger.AddSinkingFund(r.Context(), core.SinkingFund{
		Name:          sanitizeInput(req.Name),
		TargetAmount:  req.TargetAmount.Int64(),
		CurrentAmount: req.CurrentAmount.Int64(),
		DueDate:       req.DueDate,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Status(http.StatusCreated).JSON(f).TriggerChanged(EventSinkingFunds).Write(w)
}

func (s *Server) handleDeleteSinkingFund(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Ledger.DeleteSinkingFund(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Status(http.StatusNoContent).TriggerChanged(EventSinkingFunds).Write(w)
}

// Goals

type goalRequest struct {
	Name          string `json:"name" validate:"required,max=100"`
	TargetAmount  Amount `json:"target_amount"`
	CurrentAmount Amount `json:"current_amount"`
}

type goalUpdateRequest struct {
	CurrentAmount Amount `json:"current_amount"`
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.deps.Ledger.ListGoals(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(goals).Write(w)
}

func (s *Server) handleAddGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	g, err := s.deps.Ledger.AddGoal(r.Context(), core.FinancialGoal{
		Name:          sanitizeInput(req.Name),
		TargetAmount:  req.TargetAmount.Int64(),
		CurrentAmount: req.CurrentAmount.Int64(),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Status(http.StatusCreated).JSON(g).TriggerChanged(EventGoals).Write(w)
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	g, err := s.deps.Ledger.UpdateGoalCurrent(r.Context(), r.PathValue("id"), req.CurrentAmount.Int64())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(g).TriggerChanged(EventGoals).Write(w)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Ledger.DeleteGoal(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Status(http.StatusNoContent).TriggerChanged(EventGoals).Write(w)
}

// Assets

type assetRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Value Amount `json:"value"`
}

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := s.deps.Ledger.ListAssets(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(assets).Write(w)
}

func (s *Server) handleAddAsset(w http.ResponseWriter, r *http.Request) {
	var req assetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	a, err := s.deps.Ledger.AddAsset(r.Context(), core.Asset{Name: sanitizeInput(req.Name), Value: req.Value.Int64()})
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Status(http.StatusCreated).JSON(a).TriggerChanged(EventAssets).Write(w)
}

func (s *Server) handleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Ledger.DeleteAsset(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Status(http.StatusNoContent).TriggerChanged(EventAssets).Write(w)
}

// Transactions

type transactionRequest struct {
	// Date defaults to today.
	Date        core.Date `json:"date"`
	Type        string    `json:"type" validate:"required,oneof=EXPENSE INCOME"`
	Category    string    `json:"category" validate:"required,max=50"`
	Amount      Amount    `json:"amount"`
	Description string    `json:"description" validate:"max=200"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	f, err := ParseTransactionFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	txs, err := s.deps.Ledger.ListTransactions(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(txs).Write(w)
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	date := req.Date
	if date.IsZero() {
		date = core.DateOf(s.now())
	}
	var createdBy string
	if sess, ok := sessionFrom(r.Context()); ok {
		createdBy = sess.UserID
	}

	tx, err := s.deps.Ledger.AddTransaction(r.Context(), core.Transaction{
		Date:        date,
		Type:        core.TransactionType(req.Type),
		Category:    sanitizeInput(req.Category),
		Amount:      req.Amount.Int64(),
		Description: sanitizeInput(req.Description),
		CreatedBy:   createdBy,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Status(http.StatusCreated).JSON(tx).TriggerChanged(EventTransactions).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Ledger.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Status(http.StatusNoContent).TriggerChanged(EventTransactions).Write(w)
}

// handleExportTransactions streams the filtered journal as a workbook.
func (s *Server) handleExportTransactions(w http.ResponseWriter, r *http.Request) {
	f, err := ParseTransactionFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	txs, err := s.deps.Ledger.ListTransactions(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}

	filename := fmt.Sprintf("transaksi-%s.xlsx", core.DateOf(s.now()))
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	if err := export.WriteTransactionsXLSX(w, txs); err != nil {
		applog.FromContext(r.Context()).LogError(r.Context(), "Failed to export transactions", err, applog.OpRead, nil)
		return
	}
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Transactions exported", "count", len(txs))
}

// Menus

type menuRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Price Amount `json:"price"`
	Type  string `json:"type" validate:"required"`
}

func (s *Server) handleListMenus(w http.ResponseWriter, r *http.Request) {
	menus, err := s.deps.Ledger.ListMenus(r.Context(), ParseMenuType(r.URL.Query()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().JSON(menus).Write(w)
}

func (s *Server) handleAddMenu(w http.ResponseWriter, r *http.Request) {
	var req menuRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	m, err := s.deps.Ledger.AddMenu(r.Context(), core.MenuItem{
		Name:  sanitizeInput(req.Name),
		Price: req.Price.Int64(),
		Type:  core.MenuType(strings.ToUpper(strings.TrimSpace(req.Type))),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Status(http.StatusCreated).JSON(m).Trigger(EventMenus, nil).Write(w)
}

func (s *Server) handleDeleteMenu(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Ledger.DeleteMenu(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	NewResponse().Status(http.StatusNoContent).Trigger(EventMenus, nil).Write(w)
}
