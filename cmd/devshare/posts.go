package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/VitaminP8/devshare/internal/post"
)

var (
	searchQuery     string
	disableComments bool
)

var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "List posts, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			posts []*post.Post
			err   error
		)
		if searchQuery != "" {
			posts, err = client.SearchPosts(cmd.Context(), searchQuery)
		} else {
			posts, err = client.ListPosts(cmd.Context())
		}
		if err != nil {
			return err
		}
		printPosts(cmd.OutOrStdout(), posts)
		return nil
	},
}

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Manage posts",
}

var postCreateCmd = &cobra.Command{
	Use:   "create <title> <content>",
	Short: "Publish a post",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if session.CurrentUser() == nil {
			return errNotLoggedIn
		}
		p, err := client.CreatePost(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created post %s\n", p.ID)
		return nil
	},
}

var postCommentsCmd = &cobra.Command{
	Use:   "comments <postID>",
	Short: "Enable or disable comments on your post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if session.CurrentUser() == nil {
			return errNotLoggedIn
		}
		p, err := client.SetCommentsDisabled(cmd.Context(), args[0], disableComments)
		if err != nil {
			return err
		}
		state := "enabled"
		if p.CommentsDisabled {
			state = "disabled"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "comments %s on post %s\n", state, p.ID)
		return nil
	},
}

func init() {
	postsCmd.Flags().StringVarP(&searchQuery, "search", "s", "", "Search in titles and content")
	postCommentsCmd.Flags().BoolVar(&disableComments, "disable", false, "Disable comments instead of enabling them")
	postCmd.AddCommand(postCreateCmd, postCommentsCmd)
}

func printPosts(w io.Writer, posts []*post.Post) {
	if len(posts) == 0 {
		fmt.Fprintln(w, "No posts yet.")
		return
	}
	for _, p := range posts {
		fmt.Fprintf(w, "[%s] %s  (%s)\n", p.ID, p.Title, p.CreatedAt.Format("2006-01-02 15:04"))
	}
}
