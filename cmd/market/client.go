package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/calehh/hac-market/command"
	"github.com/calehh/hac-market/server"
)

func printResult(raw json.RawMessage) error {
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", " "); err != nil {
		return err
	}
	_, err := fmt.Fprintf(os.Stdout, "%s\n", out.Bytes())
	return err
}

func call(url string, method string, params ...any) error {
	raw, err := server.NewClient(url).Call(context.Background(), method, params...)
	if err != nil {
		return err
	}
	return printResult(raw)
}

// optional turns an unset value into nil so the service applies its default.
func optional[T comparable](v T) any {
	var zero T
	if v == zero {
		return nil
	}
	return v
}

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Listing template commands",
}

type templateAddArguments struct {
	Url           string
	ProfileId     uint64
	Title         string
	Short         string
	Long          string
	Category      string
	BasePrice     float64
	Domestic      float64
	International float64
	Escrow        string
}

var templateAddArgs templateAddArguments

var templateAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a listing template",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := templateAddArgs
		return call(a.Url, command.MethodTemplateAdd,
			a.ProfileId, a.Title, a.Short, a.Long,
			optional(a.Category), nil, nil,
			a.BasePrice, a.Domestic, a.International,
			optional(a.Escrow))
	},
}

type templateUpdateArguments struct {
	templateAddArguments
	TemplateId uint64
}

var templateUpdateArgs templateUpdateArguments

var templateUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Replace the content of a listing template that is not posted yet",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := templateUpdateArgs
		return call(a.Url, command.MethodTemplateUpdate,
			a.TemplateId, a.Title, a.Short, a.Long,
			optional(a.Category), nil, nil,
			a.BasePrice, a.Domestic, a.International,
			optional(a.Escrow))
	},
}

type templatePostArguments struct {
	Url         string
	TemplateId  uint64
	Days        int
	MarketId    uint64
	EstimateFee bool
}

var templatePostArgs templatePostArguments

var templatePostCmd = &cobra.Command{
	Use:   "post",
	Short: "Freeze a listing template and post it to a market",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := templatePostArgs
		return call(a.Url, command.MethodTemplatePost, a.TemplateId, optional(a.Days), a.MarketId, a.EstimateFee)
	},
}

type imageAddArguments struct {
	Url        string
	TemplateId uint64
	File       string
}

var imageAddArgs imageAddArguments

var imageCmd = &cobra.Command{
	Use:   "image",
	Short: "Image commands",
}

var imageAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Attach a local image file to a listing template",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := imageAddArgs
		dat, err := os.ReadFile(a.File)
		if err != nil {
			return err
		}
		return call(a.Url, command.MethodImageAdd, "template", a.TemplateId, "LOCAL", base64.StdEncoding.EncodeToString(dat), "BASE64")
	},
}

type proposalPostArguments struct {
	Url         string
	MarketId    uint64
	Title       string
	Description string
	Days        int
	EstimateFee bool
	Options     []string
}

var proposalPostArgs proposalPostArguments

var proposalCmd = &cobra.Command{
	Use:   "proposal",
	Short: "Proposal commands",
}

var proposalPostCmd = &cobra.Command{
	Use:   "post",
	Short: "Post a public vote to a market",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := proposalPostArgs
		params := []any{a.MarketId, a.Title, a.Description, optional(a.Days), a.EstimateFee}
		for _, o := range a.Options {
			params = append(params, o)
		}
		return call(a.Url, command.MethodProposalPost, params...)
	},
}

type postsArguments struct {
	Url       string
	DraftId   uint64
	Operation string
	Hash      string
	Page      int
	PageSize  int
	Failed    bool
}

var postsArgs postsArguments

var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "List recorded sends",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := postsArgs
		res, err := server.NewClient(a.Url).GetPosts(context.Background(), server.GetPostsReq{
			DraftId:     a.DraftId,
			OperationId: a.Operation,
			Hash:        a.Hash,
			Page:        a.Page,
			PageSize:    a.PageSize,
			FailedOnly:  a.Failed,
		})
		if err != nil {
			return err
		}
		raw, err := json.Marshal(res)
		if err != nil {
			return err
		}
		return printResult(raw)
	},
}

func init() {
	urlFlag(templateAddCmd, &templateAddArgs.Url)
	templateAddCmd.Flags().Uint64VarP(&templateAddArgs.ProfileId, "profile", "p", 1, "profile id")
	templateAddCmd.Flags().StringVarP(&templateAddArgs.Title, "title", "t", "", "title")
	templateAddCmd.Flags().StringVar(&templateAddArgs.Short, "short", "", "short description")
	templateAddCmd.Flags().StringVar(&templateAddArgs.Long, "long", "", "long description")
	templateAddCmd.Flags().StringVarP(&templateAddArgs.Category, "category", "c", "", "category key")
	templateAddCmd.Flags().Float64Var(&templateAddArgs.BasePrice, "price", 0, "base price")
	templateAddCmd.Flags().Float64Var(&templateAddArgs.Domestic, "domestic", 0, "domestic shipping price")
	templateAddCmd.Flags().Float64Var(&templateAddArgs.International, "international", 0, "international shipping price")
	templateAddCmd.Flags().StringVarP(&templateAddArgs.Escrow, "escrow", "e", "", "escrow type")
	templateCmd.AddCommand(templateAddCmd)

	urlFlag(templateUpdateCmd, &templateUpdateArgs.Url)
	templateUpdateCmd.Flags().Uint64VarP(&templateUpdateArgs.TemplateId, "template", "i", 0, "listing template id")
	templateUpdateCmd.Flags().StringVarP(&templateUpdateArgs.Title, "title", "t", "", "title")
	templateUpdateCmd.Flags().StringVar(&templateUpdateArgs.Short, "short", "", "short description")
	templateUpdateCmd.Flags().StringVar(&templateUpdateArgs.Long, "long", "", "long description")
	templateUpdateCmd.Flags().StringVarP(&templateUpdateArgs.Category, "category", "c", "", "category key")
	templateUpdateCmd.Flags().Float64Var(&templateUpdateArgs.BasePrice, "price", 0, "base price")
	templateUpdateCmd.Flags().Float64Var(&templateUpdateArgs.Domestic, "domestic", 0, "domestic shipping price")
	templateUpdateCmd.Flags().Float64Var(&templateUpdateArgs.International, "international", 0, "international shipping price")
	templateUpdateCmd.Flags().StringVarP(&templateUpdateArgs.Escrow, "escrow", "e", "", "escrow type")
	templateCmd.AddCommand(templateUpdateCmd)

	urlFlag(templatePostCmd, &templatePostArgs.Url)
	templatePostCmd.Flags().Uint64VarP(&templatePostArgs.TemplateId, "template", "i", 0, "listing template id")
	templatePostCmd.Flags().IntVarP(&templatePostArgs.Days, "days", "r", 0, "days retention, the maximum when zero")
	templatePostCmd.Flags().Uint64VarP(&templatePostArgs.MarketId, "market", "m", 1, "market id")
	templatePostCmd.Flags().BoolVar(&templatePostArgs.EstimateFee, "estimate", false, "only estimate the fee")
	templateCmd.AddCommand(templatePostCmd)

	urlFlag(imageAddCmd, &imageAddArgs.Url)
	imageAddCmd.Flags().Uint64VarP(&imageAddArgs.TemplateId, "template", "i", 0, "listing template id")
	imageAddCmd.Flags().StringVarP(&imageAddArgs.File, "file", "f", "", "image file")
	imageCmd.AddCommand(imageAddCmd)

	urlFlag(proposalPostCmd, &proposalPostArgs.Url)
	proposalPostCmd.Flags().Uint64VarP(&proposalPostArgs.MarketId, "market", "m", 1, "market id")
	proposalPostCmd.Flags().StringVarP(&proposalPostArgs.Title, "title", "t", "", "proposal title")
	proposalPostCmd.Flags().StringVar(&proposalPostArgs.Description, "description", "", "proposal description")
	proposalPostCmd.Flags().IntVarP(&proposalPostArgs.Days, "days", "r", 0, "days retention, the maximum when zero")
	proposalPostCmd.Flags().BoolVar(&proposalPostArgs.EstimateFee, "estimate", false, "only estimate the fee")
	proposalPostCmd.Flags().StringArrayVarP(&proposalPostArgs.Options, "option", "o", nil, "option description, repeat for each option")
	proposalCmd.AddCommand(proposalPostCmd)

	urlFlag(postsCmd, &postsArgs.Url)
	postsCmd.Flags().Uint64VarP(&postsArgs.DraftId, "template", "i", 0, "listing template id")
	postsCmd.Flags().StringVar(&postsArgs.Operation, "operation", "", "post operation id")
	postsCmd.Flags().StringVar(&postsArgs.Hash, "hash", "", "content hash")
	postsCmd.Flags().IntVar(&postsArgs.Page, "page", 0, "page")
	postsCmd.Flags().IntVar(&postsArgs.PageSize, "page-size", 20, "page size")
	postsCmd.Flags().BoolVar(&postsArgs.Failed, "failed", false, "only failed image sends, needs --template")
}
