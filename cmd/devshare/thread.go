package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/VitaminP8/devshare/internal/page"
	"github.com/VitaminP8/devshare/internal/thread"
)

var (
	expandIDs   []string
	follow      bool
	parentID    string
	assumeYes   bool
	errNotFound = errors.New("comment not found in this post")
)

var threadCmd = &cobra.Command{
	Use:   "thread <postID>",
	Short: "Show a post with its comments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		var p *page.PostPage
		rerender := func() {
			fmt.Fprintln(out, strings.Repeat("-", 40))
			if err := p.Render(out); err != nil {
				log.Warn("render failed", zap.Error(err))
			}
		}

		p, err := openPage(ctx, args[0], page.WithOnChange(rerender))
		if err != nil {
			return err
		}
		for _, id := range expandIDs {
			if _, err := p.Thread().Expand(ctx, id); err != nil {
				return err
			}
		}
		if err := p.Render(out); err != nil {
			return err
		}
		if !follow {
			return nil
		}

		events, err := client.Subscribe(ctx, args[0])
		if err != nil {
			return err
		}
		err = p.Watch(ctx, events)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

var commentCmd = &cobra.Command{
	Use:   "comment <postID> <content>",
	Short: "Comment on a post or reply to a comment",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		p, err := openPage(ctx, args[0])
		if err != nil {
			return err
		}
		if parentID != "" {
			if err := locate(ctx, p.Thread(), parentID); err != nil {
				return err
			}
		}
		c, err := p.Thread().CreateComment(ctx, args[1], parentID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "posted comment %s\n", c.ID)
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <postID> <commentID> <content>",
	Short: "Edit your comment",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		p, err := openPage(ctx, args[0])
		if err != nil {
			return err
		}
		if err := locate(ctx, p.Thread(), args[1]); err != nil {
			return err
		}
		if _, err := p.Thread().UpdateComment(ctx, args[1], args[2]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "comment updated")
		return nil
	},
}

var likeCmd = &cobra.Command{
	Use:   "like <postID> <commentID>",
	Short: "Like or unlike a comment",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		p, err := openPage(ctx, args[0])
		if err != nil {
			return err
		}
		t := p.Thread()
		if err := locate(ctx, t, args[1]); err != nil {
			return err
		}
		if err := t.ToggleLike(ctx, args[1]); err != nil {
			return err
		}
		n, err := t.Node(args[1])
		if err != nil {
			return err
		}
		verb := "unliked"
		if n.Like.Liked {
			verb = "liked"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s comment %s (%d)\n", verb, n.ID(), n.Like.Count)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <postID> <commentID>",
	Short: "Delete your comment and its replies",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		p, err := openPage(ctx, args[0],
			page.WithConfirmer(promptConfirmer(cmd.InOrStdin(), cmd.OutOrStdout(), assumeYes)))
		if err != nil {
			return err
		}
		if err := locate(ctx, p.Thread(), args[1]); err != nil {
			return err
		}
		deleted, err := p.Thread().DeleteComment(ctx, args[1])
		if err != nil {
			return err
		}
		if deleted {
			fmt.Fprintln(cmd.OutOrStdout(), "comment deleted")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "cancelled")
		}
		return nil
	},
}

func init() {
	threadCmd.Flags().StringSliceVarP(&expandIDs, "expand", "e", nil, "Comment ids whose replies to show")
	threadCmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep running and re-render on changes")
	commentCmd.Flags().StringVarP(&parentID, "parent", "p", "", "Reply to this comment")
	deleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
}

// openPage загружает пост и корневые комментарии
func openPage(ctx context.Context, postID string, opts ...page.Option) (*page.PostPage, error) {
	pst, err := client.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	opts = append([]page.Option{page.WithPost(pst), page.WithLogger(log)}, opts...)
	p := page.New(postID, client, session, opts...)
	if err := p.Refresh(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// locate раскрывает ветки, пока комментарий не окажется в дереве
func locate(ctx context.Context, t *thread.Thread, commentID string) error {
	for {
		if _, err := t.Node(commentID); err == nil {
			return nil
		}

		var pending []string
		thread.Walk(t.Roots(), func(_ int, n *thread.Node) bool {
			if n.ReplyState() == thread.RepliesNotFetched && n.Comment.ReplyCount > 0 {
				pending = append(pending, n.ID())
			}
			return true
		})
		if len(pending) == 0 {
			return fmt.Errorf("%w: %s", errNotFound, commentID)
		}
		for _, id := range pending {
			if _, err := t.LoadReplies(ctx, id); err != nil {
				return err
			}
		}
	}
}

// promptConfirmer спрашивает y/N в терминале
func promptConfirmer(in io.Reader, out io.Writer, yes bool) thread.Confirmer {
	reader := bufio.NewReader(in)
	return thread.ConfirmFunc(func(ctx context.Context, prompt string) (bool, error) {
		if yes {
			return true, nil
		}
		fmt.Fprintf(out, "%s [y/N] ", prompt)
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return false, err
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes", nil
	})
}
