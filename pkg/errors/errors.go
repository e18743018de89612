// Package errors はプロジェクト全体のエラーハンドリングと警告システムを提供します。
// scikit-learnの警告・例外システムにインスパイアされており、構造化されたエラー情報を提供します。
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// デフォルトのハンドラは標準エラー出力にログを出す
		log.Printf("pipekit-Warning: %v\n", w)
	}
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// SetWarningHandler はライブラリ全体の警告ハンドラを設定します。
// これにより、ComponentTruncationWarningなどのカスタム警告の処理方法を制御できます。
//
// 例:
//
//	errors.SetWarningHandler(func(w error) {
//	    // 警告を無視する
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc はzerolog警告関数を設定します（循環importを避けるため）。
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn は警告を発生させます。
// zerologが利用可能な場合は構造化ログとして出力し、そうでなければ従来のハンドラを使用します。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	// zerologが設定されている場合は優先的に使用
	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	// フォールバック: 従来のハンドラ
	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	警告型
//
// ===========================================================================

// ComponentTruncationWarning は要求された成分数が利用可能な成分数を超えた場合に
// 発生する警告です。保持される成分数は利用可能な数に切り詰められます。
type ComponentTruncationWarning struct {
	Stage     string
	Requested int
	Available int
}

func (w *ComponentTruncationWarning) Error() string {
	return fmt.Sprintf("%s: requested %d components but only %d are available; keeping %d",
		w.Stage, w.Requested, w.Available, w.Available)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *ComponentTruncationWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("stage", w.Stage).
		Int("requested", w.Requested).
		Int("available", w.Available).
		Str("type", "ComponentTruncationWarning")
}

// NewComponentTruncationWarning は新しいComponentTruncationWarningを作成します。
func NewComponentTruncationWarning(stage string, requested, available int) *ComponentTruncationWarning {
	return &ComponentTruncationWarning{Stage: stage, Requested: requested, Available: available}
}

// ===========================================================================
//
//	構造化されたエラー型
//
// ===========================================================================

// StructuralError はパイプラインの構成が不正な場合のエラーです。
// 空のパイプライン、終端が予測器でない場合、ファンアウト時のデータセット数と
// ステージ数の不一致などを表します。Positionは該当するパイプライン位置で、
// 特定の位置に紐付かない場合は-1です。
type StructuralError struct {
	Op       string
	Position int
	Reason   string
}

func (e *StructuralError) Error() string {
	if e.Position >= 0 {
		return fmt.Sprintf("pipekit: %s: position %d: %s", e.Op, e.Position, e.Reason)
	}
	return fmt.Sprintf("pipekit: %s: %s", e.Op, e.Reason)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *StructuralError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("position", e.Position).
		Str("reason", e.Reason).
		Str("type", "StructuralError")
}

// NewStructuralError は新しいStructuralErrorを作成し、スタックトレースを付与します。
// 特定のパイプライン位置に紐付かないエラーにはposition=-1を渡します。
func NewStructuralError(op string, position int, reason string) error {
	err := &StructuralError{Op: op, Position: position, Reason: reason}
	return errors.WithStack(err)
}

// InvalidInputError はステージの事前条件に違反する入力が渡された場合のエラーです。
// 二値分類器への3クラスラベルや、未知のカーネル種別などを表します。
type InvalidInputError struct {
	Stage  string
	Op     string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("pipekit: %s.%s: invalid input: %s", e.Stage, e.Op, e.Reason)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *InvalidInputError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("stage", e.Stage).
		Str("operation", e.Op).
		Str("reason", e.Reason).
		Str("type", "InvalidInputError")
}

// NewInvalidInputError は新しいInvalidInputErrorを作成し、スタックトレースを付与します。
func NewInvalidInputError(stage, op, reason string) error {
	err := &InvalidInputError{Stage: stage, Op: op, Reason: reason}
	return errors.WithStack(err)
}

// NotFittedError はステージが未学習の状態で `Transform` や `Predict` を呼び出した場合のエラーです。
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("pipekit: %s: this stage is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError は新しいNotFittedErrorを作成し、スタックトレースを付与します。
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method}
	return errors.WithStack(err)
}

// DimensionError は入力データの次元が期待値と異なる場合のエラーです。
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("pipekit: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", axisName).
		Str("type", "DimensionError")
}

// NewDimensionError は新しいDimensionErrorを作成し、スタックトレースを付与します。
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ValidationError は構築時パラメータの検証に失敗した場合のエラーです。
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("pipekit: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError は新しいValidationErrorを作成し、スタックトレースを付与します。
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ValueError は引数の値が不適切または不正な場合に発生するエラーです。
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("pipekit: %s: %s", e.Op, e.Message)
}

// NewValueError は新しいValueErrorを作成し、スタックトレースを付与します。
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ModelError はステージの学習・推論に関する一般的なエラーです。
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pipekit: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("pipekit: %s: %s", e.Op, e.Kind)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError は新しいModelErrorを作成し、スタックトレースを付与します。
func NewModelError(op, kind string, err error) error {
	modelErr := &ModelError{Op: op, Kind: kind, Err: err}
	return errors.WithStack(modelErr)
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf は新しいフォーマット済みエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	共通エラー変数
//
// ===========================================================================

var (
	// ErrNotImplemented は機能が未実装の場合のエラーです。
	ErrNotImplemented = New("not implemented")

	// ErrEmptyData は空のデータが渡された場合のエラーです。
	ErrEmptyData = New("empty data")

	// ErrSingularMatrix は特異行列の場合のエラーです。
	ErrSingularMatrix = New("singular matrix")
)
